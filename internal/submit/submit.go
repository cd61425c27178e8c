// Package submit implements the submission envelope: the convention that lets
// structured UI interactions (button clicks, form submissions, selections)
// travel through the plain-text message channel.
package submit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Prefix is the sentinel marking a user message as a submission. The wire
// format is the prefix followed directly by the JSON envelope.
const Prefix = "__SUBMIT__:"

// ErrMalformed indicates text carried the sentinel but the JSON after it did
// not parse. Such text is not usable as plain input either, so callers must
// surface the failure rather than fall back silently.
var ErrMalformed = errors.New("malformed submission payload")

// Envelope is the decoded form of a submission message.
type Envelope struct {
	Action   string          `json:"action"`
	FormData json.RawMessage `json:"formData,omitempty"`
}

// Encode serializes an action and its form data into a submission string.
// A nil formData encodes as an empty object.
func Encode(action string, formData any) (string, error) {
	if formData == nil {
		formData = map[string]any{}
	}
	payload := struct {
		Action   string `json:"action"`
		FormData any    `json:"formData"`
	}{Action: action, FormData: formData}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}
	return Prefix + string(b), nil
}

// TryDecode inspects text for the submission sentinel. The second return
// value reports whether the sentinel was present at all; ordinary chat input
// yields (nil, false, nil).
func TryDecode(text string) (*Envelope, bool, error) {
	if !strings.HasPrefix(text, Prefix) {
		return nil, false, nil
	}
	var env Envelope
	if err := json.Unmarshal([]byte(text[len(Prefix):]), &env); err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &env, true, nil
}

// DecodeFormData unmarshals the envelope's form data into dst. Missing form
// data is not an error; dst is left untouched.
func (e *Envelope) DecodeFormData(dst any) error {
	if len(e.FormData) == 0 {
		return nil
	}
	return json.Unmarshal(e.FormData, dst)
}
