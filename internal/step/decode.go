package step

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads a step list from JSON. It accepts a bare array, an object with
// a "steps" field, or the compute service's {"error": "..."} reply, which
// becomes a single error step.
func Decode(r io.Reader) ([]Step, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(raw)
}

func DecodeBytes(raw []byte) ([]Step, error) {
	raw = bytes.TrimSpace(QuoteNonFinite(raw))
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrBadStep)
	}

	var steps []Step
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &steps); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadStep, err)
		}
	case '{':
		var body struct {
			Steps []Step `json:"steps"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadStep, err)
		}
		if body.Error != "" {
			return []Step{{Action: ActionError, Message: body.Error}}, nil
		}
		steps = body.Steps
	default:
		return nil, fmt.Errorf("%w: expected a list or an object", ErrBadStep)
	}

	if err := Validate(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// Validate checks that every step carries an action tag. Unknown tags are
// allowed; the interpreter only paces over them.
func Validate(steps []Step) error {
	for i := range steps {
		if steps[i].Action == "" {
			return fmt.Errorf("%w: step %d has no action", ErrBadStep, i)
		}
	}
	return nil
}

var nonFinite = [][]byte{[]byte("-Infinity"), []byte("Infinity"), []byte("NaN")}

// QuoteNonFinite wraps the bare Infinity/NaN tokens that Python's json module
// emits in quotes so encoding/json accepts them. Callers that unmarshal a
// whole document holding steps must run it first.
func QuoteNonFinite(raw []byte) []byte {
	if !bytes.Contains(raw, []byte("Infinity")) && !bytes.Contains(raw, []byte("NaN")) {
		return raw
	}
	out := make([]byte, 0, len(raw)+16)
	inString, escaped := false, false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		matched := false
		for _, tok := range nonFinite {
			if bytes.HasPrefix(raw[i:], tok) {
				out = append(out, '"')
				out = append(out, tok...)
				out = append(out, '"')
				i += len(tok) - 1
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, c)
		}
	}
	return out
}
