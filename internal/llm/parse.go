package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

// ParseMode identifies which extraction path produced the JSON object.
// Salvage results are best-effort and worth logging separately: they usually
// mean the prompt's format instructions have drifted.
type ParseMode int

const (
	// ParseModeStrict means the whole response was valid JSON
	ParseModeStrict ParseMode = iota
	// ParseModeFenced means the JSON came from a ```json code fence
	ParseModeFenced
	// ParseModeSalvage means the JSON was cut from the first { to the last }
	ParseModeSalvage
)

func (m ParseMode) String() string {
	switch m {
	case ParseModeStrict:
		return "strict"
	case ParseModeFenced:
		return "fenced"
	case ParseModeSalvage:
		return "salvage"
	}
	return "unknown"
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Parse extracts a JSON object from free-form LLM output. It tries the whole
// text, then a ```json fence, then the span from the first { to the last }.
// The salvage span is greedy and can over-capture when several objects are
// present.
func Parse(raw string) (map[string]any, ParseMode, error) {
	var obj map[string]any

	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj, ParseModeStrict, nil
	}

	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &obj); err == nil {
			return obj, ParseModeFenced, nil
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err == nil {
			return obj, ParseModeSalvage, nil
		}
	}

	return nil, 0, domain.ErrUnparsableResponse
}
