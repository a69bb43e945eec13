package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntent_Valid(t *testing.T) {
	assert.True(t, IntentPitch.Valid())
	assert.True(t, IntentApply.Valid())
	assert.False(t, Intent("").Valid())
	assert.False(t, Intent("PITCH").Valid())
	assert.False(t, Intent("follow").Valid())
}

func TestNewSendRecord(t *testing.T) {
	req := Request{Intent: IntentApply, To: "hr@acme.test", Role: "Backend", JobDesc: "Go", Extra: "remote"}
	content := GeneratedContent{Subject: "Backend application", Body: "Hello"}

	rec := NewSendRecord(req, content, &DeliveryResult{MessageID: "<abc@acme.test>", Transport: "primary"})
	assert.Equal(t, "hr@acme.test", rec.To)
	assert.Equal(t, "Backend application", rec.Subject)
	assert.Equal(t, "Hello", rec.Body)
	assert.Equal(t, IntentApply, rec.Intent)
	assert.Equal(t, "Backend", rec.Role)
	assert.Equal(t, "Go", rec.JobDesc)
	assert.Equal(t, "remote", rec.Extra)
	assert.Equal(t, "<abc@acme.test>", rec.MessageID)
	assert.Empty(t, rec.ID)
	assert.False(t, rec.Deleted)

	rec = NewSendRecord(req, content, nil)
	assert.Empty(t, rec.MessageID)
}
