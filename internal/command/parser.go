// Package command turns raw chat text into a typed email request.
//
// Supported forms:
//
//	!pitch client@example.com | role: Web Dev | desc: ... | extra: ...
//	!apply hr@company.com | role: Frontend | desc: JD text or URL | extra: ...
package command

import (
	"regexp"
	"strings"

	"github.com/mrmailer/mrmailer/internal/model"
)

// `.` does not match newlines, so only the first line after the intent is used.
var commandPattern = regexp.MustCompile(`(?i)^!(pitch|apply)\s+(.+)`)

// Parse returns the request encoded in raw, or nil when raw is not a command.
func Parse(raw string) *model.Request {
	m := commandPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	parts := strings.Split(m[2], "|")
	req := &model.Request{
		Intent: model.Intent(strings.ToLower(m[1])),
		To:     strings.TrimSpace(parts[0]),
	}

	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "role":
			req.Role = value
		case "desc":
			req.JobDesc = value
		case "extra":
			req.Extra = value
		}
	}
	return req
}
