package parser

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
)

// wireEvent names every field the engine reads. Each field is kept raw and
// decoded on its own so a field of the wrong type only drops that field.
type wireEvent struct {
	Event    json.RawMessage `json:"event"`
	ID       json.RawMessage `json:"id"`
	Name     json.RawMessage `json:"name"`
	Parent   json.RawMessage `json:"parent"`
	Result   json.RawMessage `json:"result"`
	Message  json.RawMessage `json:"message"`
	Duration json.RawMessage `json:"duration"`
}

// JSONParser parses listener-plugin JSON lines
type JSONParser struct{}

// NewJSONParser creates a new JSONParser
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// ParseLine implements Parser
func (p *JSONParser) ParseLine(raw string) (Event, bool) {
	return ParseLine(raw)
}

// ParseLine decodes a whole line as a JSON event object. It returns false for
// anything that is not a recognised event; such lines belong to the log.
// Terminal escape sequences around the object are ignored.
func ParseLine(raw string) (Event, bool) {
	if strings.IndexByte(raw, 0x1b) >= 0 {
		raw = stripansi.Strip(raw)
	}
	line := bytes.TrimSpace([]byte(raw))
	if len(line) == 0 || line[0] != '{' {
		return Event{}, false
	}

	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		return Event{}, false
	}

	kind, ok := kindNames[stringField(w.Event)]
	if !ok {
		return Event{}, false
	}

	ev := Event{
		Kind:    kind,
		ID:      stringField(w.ID),
		Name:    stringField(w.Name),
		Parent:  stringField(w.Parent),
		Message: stringField(w.Message),
	}
	if kind == TestFinished {
		ev.RawResult = stringField(w.Result)
		ev.Result = ParseResult(ev.RawResult)
		ev.Duration, ev.HasDuration = durationField(w.Duration)
	}
	return ev, true
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// durationField reads a millisecond count
func durationField(raw json.RawMessage) (time.Duration, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return 0, false
	}
	if math.IsNaN(ms) || ms < 0 || ms > float64(math.MaxInt64/int64(time.Millisecond)) {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}
