package bot

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/mrmailer/mrmailer/internal/model"
	"github.com/mrmailer/mrmailer/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls []string
	out   service.Outcome
}

func (f *fakeRunner) Handle(_ context.Context, raw string) service.Outcome {
	f.calls = append(f.calls, raw)
	if !strings.HasPrefix(raw, "!") {
		return service.Outcome{}
	}
	return f.out
}

type recordingReplier struct {
	replies []string
	err     error
}

func (r *recordingReplier) Reply(_ context.Context, text string) error {
	r.replies = append(r.replies, text)
	return r.err
}

var sentOutcome = service.Outcome{
	Request:  &model.Request{Intent: model.IntentApply, To: "hr@acme.io"},
	Content:  &model.GeneratedContent{Subject: "Application: Go", Body: "Dear team"},
	RecordID: "1",
}

func TestHandleMessage_RepliesWithPreview(t *testing.T) {
	runner := &fakeRunner{out: sentOutcome}
	h := NewHandler(runner, config.ChatConfig{}, logger.Nop())
	r := &recordingReplier{}

	out, err := h.HandleMessage(context.Background(), Message{Author: "jane", Content: "!apply hr@acme.io"}, r)
	require.NoError(t, err)
	assert.Equal(t, service.StatusSent, out.Status())
	require.Len(t, r.replies, 1)
	assert.True(t, strings.HasPrefix(r.replies[0], "✅ **Email sent successfully!**\n\n```\nPREVIEW\nTo: hr@acme.io"))
}

func TestHandleMessage_ReportsErrors(t *testing.T) {
	runner := &fakeRunner{out: service.Outcome{
		Request: &model.Request{Intent: model.IntentPitch},
		Err:     errors.New("generation failed"),
	}}
	h := NewHandler(runner, config.ChatConfig{}, logger.Nop())
	r := &recordingReplier{}

	_, err := h.HandleMessage(context.Background(), Message{Content: "!pitch x"}, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"❌ **Error:** generation failed"}, r.replies)
}

func TestHandleMessage_Ignores(t *testing.T) {
	cases := []struct {
		name    string
		channel string
		msg     Message
		runs    int
	}{
		{"bot author", "", Message{AuthorBot: true, Content: "!apply hr@acme.io"}, 0},
		{"other channel", "123", Message{ChannelID: "456", Content: "!apply hr@acme.io"}, 0},
		{"plain chatter", "", Message{Content: "good morning"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{out: sentOutcome}
			h := NewHandler(runner, config.ChatConfig{ChannelID: tc.channel}, logger.Nop())
			r := &recordingReplier{}

			out, err := h.HandleMessage(context.Background(), tc.msg, r)
			require.NoError(t, err)
			assert.Equal(t, service.StatusIgnored, out.Status())
			assert.Len(t, runner.calls, tc.runs)
			assert.Empty(t, r.replies)
		})
	}
}

func TestHandleMessage_ConfiguredChannel(t *testing.T) {
	runner := &fakeRunner{out: sentOutcome}
	h := NewHandler(runner, config.ChatConfig{ChannelID: "123"}, logger.Nop())
	r := &recordingReplier{}

	_, err := h.HandleMessage(context.Background(), Message{ChannelID: "123", Content: "!apply hr@acme.io"}, r)
	require.NoError(t, err)
	assert.Len(t, r.replies, 1)
}

func TestHandleMessage_ReplyFailure(t *testing.T) {
	h := NewHandler(&fakeRunner{out: sentOutcome}, config.ChatConfig{}, logger.Nop())

	out, err := h.HandleMessage(context.Background(), Message{Content: "!apply hr@acme.io"}, &recordingReplier{err: errors.New("gateway closed")})
	assert.ErrorContains(t, err, "gateway closed")
	assert.Equal(t, service.StatusSent, out.Status())
}

func TestWriterReplier(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriterReplier{W: &buf}.Reply(context.Background(), "hi"))
	assert.Equal(t, "hi\n", buf.String())
}
