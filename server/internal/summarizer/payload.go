package summarizer

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/obsidianstack/hostpulse/server/internal/health"
	"github.com/obsidianstack/hostpulse/server/internal/hostinfo"
)

// MaxObjectChars is the largest serialized size, in characters, accepted for
// each object in an Input.
const MaxObjectChars = 2000

// Input is what gets explained: a scored health report and the identity of
// the instance that produced it.
type Input struct {
	Health health.Report         `json:"health"`
	Status hostinfo.StatusReport `json:"status"`
}

// serialize renders v as JSON, or as Go %+v text if it cannot be marshalled,
// and enforces MaxObjectChars.
func serialize(name string, v any) (string, error) {
	var text string
	if b, err := json.Marshal(v); err == nil {
		text = string(b)
	} else {
		text = fmt.Sprintf("%+v", v)
	}
	if n := utf8.RuneCountInString(text); n > MaxObjectChars {
		return "", fmt.Errorf("%w: %s is %d characters", ErrPayloadTooLarge, name, n)
	}
	return text, nil
}

// userMessage builds the user turn from in, or fails if either part is too large.
func userMessage(in Input) (string, error) {
	h, err := serialize("health", in.Health)
	if err != nil {
		return "", err
	}
	s, err := serialize("status", in.Status)
	if err != nil {
		return "", err
	}
	return "Health report:\n" + h + "\n\nService status:\n" + s, nil
}
