package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/mrmailer/mrmailer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	name  string
	err   error
	calls []Message
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) Send(_ context.Context, msg Message) (*model.DeliveryResult, error) {
	f.calls = append(f.calls, msg)
	if f.err != nil {
		return nil, f.err
	}
	return &model.DeliveryResult{MessageID: "<" + f.name + "@test>", Response: "250 OK"}, nil
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var errRefused = &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused", errRefused, true},
		{"wrapped refused", fmt.Errorf("dial failed: %w", errRefused), true},
		{"timeout", &net.OpError{Op: "read", Net: "tcp", Err: timeoutError{}}, true},
		{"auth failure", errors.New("535 5.7.8 authentication failed"), false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestDispatcher_PrimarySuccess(t *testing.T) {
	primary := &fakeTransport{name: TransportPrimary}
	fallback := &fakeTransport{name: TransportFallback}
	d := NewDispatcher(primary, fallback, config.ProfileConfig{}, logger.Nop())

	res, err := d.Send(context.Background(), "a@x.io", "Hi", "Body", false)
	require.NoError(t, err)
	assert.Equal(t, TransportPrimary, res.Transport)
	assert.Equal(t, "<primary@test>", res.MessageID)
	require.Len(t, primary.calls, 1)
	assert.Equal(t, Message{To: "a@x.io", Subject: "Hi", TextBody: "Body"}, primary.calls[0])
	assert.Empty(t, fallback.calls)
}

func TestDispatcher_FallsBackOnceOnRefused(t *testing.T) {
	primary := &fakeTransport{name: TransportPrimary, err: errRefused}
	fallback := &fakeTransport{name: TransportFallback}
	d := NewDispatcher(primary, fallback, config.ProfileConfig{}, logger.Nop())

	res, err := d.Send(context.Background(), "a@x.io", "Hi", "Body", false)
	require.NoError(t, err)
	assert.Equal(t, TransportFallback, res.Transport)
	assert.Len(t, primary.calls, 1)
	assert.Len(t, fallback.calls, 1)
}

func TestDispatcher_FallbackFailureIsTerminal(t *testing.T) {
	primary := &fakeTransport{name: TransportPrimary, err: errRefused}
	fallback := &fakeTransport{name: TransportFallback, err: errRefused}
	d := NewDispatcher(primary, fallback, config.ProfileConfig{}, logger.Nop())

	_, err := d.Send(context.Background(), "a@x.io", "Hi", "Body", false)
	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{TransportPrimary, TransportFallback}, de.Attempts)
	assert.Len(t, primary.calls, 1)
	assert.Len(t, fallback.calls, 1)
}

func TestDispatcher_NoFallbackOnAuthFailure(t *testing.T) {
	authErr := errors.New("535 5.7.8 authentication failed")
	primary := &fakeTransport{name: TransportPrimary, err: authErr}
	fallback := &fakeTransport{name: TransportFallback}
	d := NewDispatcher(primary, fallback, config.ProfileConfig{}, logger.Nop())

	_, err := d.Send(context.Background(), "a@x.io", "Hi", "Body", false)
	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, []string{TransportPrimary}, de.Attempts)
	assert.Empty(t, fallback.calls)
}

func TestDispatcher_NoFallbackConfigured(t *testing.T) {
	primary := &fakeTransport{name: TransportPrimary, err: errRefused}
	d := NewDispatcher(primary, nil, config.ProfileConfig{}, logger.Nop())

	_, err := d.Send(context.Background(), "a@x.io", "Hi", "Body", false)
	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.True(t, IsTransient(de.Err))
}

func TestDispatcher_NoFallbackWhenCallerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &fakeTransport{name: TransportPrimary, err: errRefused}
	fallback := &fakeTransport{name: TransportFallback}
	d := NewDispatcher(primary, fallback, config.ProfileConfig{}, logger.Nop())

	_, err := d.Send(ctx, "a@x.io", "Hi", "Body", false)
	require.Error(t, err)
	assert.Empty(t, fallback.calls)
}

func TestDispatcher_Attachment(t *testing.T) {
	resume := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("%PDF-1.4"), 0o644))

	cases := []struct {
		name    string
		profile config.ProfileConfig
		attach  bool
		want    []string
	}{
		{"requested and enabled", config.ProfileConfig{AttachResume: true, ResumePath: resume}, true, []string{resume}},
		{"not requested", config.ProfileConfig{AttachResume: true, ResumePath: resume}, false, nil},
		{"disabled in profile", config.ProfileConfig{ResumePath: resume}, true, nil},
		{"missing file is skipped", config.ProfileConfig{AttachResume: true, ResumePath: resume + ".missing"}, true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			primary := &fakeTransport{name: TransportPrimary}
			d := NewDispatcher(primary, nil, tc.profile, logger.Nop())

			_, err := d.Send(context.Background(), "a@x.io", "Hi", "Body", tc.attach)
			require.NoError(t, err)
			require.Len(t, primary.calls, 1)
			assert.Equal(t, tc.want, primary.calls[0].Attachments)
		})
	}
}
