package capsule

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"math"
	"strconv"
	"strings"
)

// Question is a single multiple-choice quiz question.
type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// quizItem holds the raw fields of a question. Authors write values of any
// JSON type; they are coerced to text when the question is built.
type quizItem struct {
	Q            json.RawMessage `json:"q"`
	Question     json.RawMessage `json:"question"`
	Options      json.RawMessage `json:"options"`
	Opts         json.RawMessage `json:"opts"`
	Answer       json.RawMessage `json:"answer"`
	CorrectIndex json.RawMessage `json:"correctIndex"`
	Explanation  json.RawMessage `json:"explanation"`
}

// UnmarshalJSON decodes a question leniently:
// q/question, options/opts, an integral numeric answer or else correctIndex
// (default 0). Scalars are coerced to text. An item that is not an object
// (a bare string, number or list) decodes as an empty question; null is an
// error.
func (q *Question) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return stderrors.New("quiz item is null")
	}

	var item quizItem
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}
	} else if !json.Valid(data) {
		return stderrors.New("quiz item is not valid JSON")
	}

	q.Question = firstText(item.Q, item.Question)
	q.Options = parseOptions(item.Options, item.Opts)

	if n, ok := jsonNumber(item.Answer); ok && n == math.Trunc(n) {
		q.CorrectIndex = int(n)
	} else {
		q.CorrectIndex = parseIndex(item.CorrectIndex)
	}

	q.Explanation = firstText(item.Explanation)
	return nil
}

// firstText returns the text of the first set, non-empty value.
// false, 0 and "" count as unset.
func firstText(raws ...json.RawMessage) string {
	for _, raw := range raws {
		if s, set := jsonText(raw); set {
			return s
		}
	}
	return ""
}

// parseOptions reads the option list from options, or opts when options is
// unset. An empty options list still wins over opts.
func parseOptions(options, opts json.RawMessage) []string {
	raw := options
	if _, set := jsonText(raw); !set {
		raw = opts
	}

	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return []string{}
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = optionText(v)
	}
	return out
}

// optionText renders one option; null renders as "null".
func optionText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return "null"
	}
	s, _ := jsonText(raw)
	return s
}

// jsonText coerces a JSON value to text and reports whether it is set
// (present and not null, false, 0 or "").
// Lists join their elements with ","; objects render as "[object Object]".
func jsonText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, s != ""
	case 't':
		return "true", true
	case 'f':
		return "false", false
	case '[':
		var values []json.RawMessage
		if err := json.Unmarshal(raw, &values); err != nil {
			return "", false
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i], _ = jsonText(v)
		}
		return strings.Join(parts, ","), true
	case '{':
		return "[object Object]", true
	}

	n, ok := jsonNumber(raw)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(n, 'f', -1, 64), n != 0
}

// IsCorrect reports whether choice is the correct option.
func (q *Question) IsCorrect(choice int) bool {
	return choice == q.CorrectIndex
}

// jsonNumber returns the value of raw if it is a JSON number.
func jsonNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// parseIndex reads an integer from a number or a string with a leading integer
// ("2", " 3rd"), returning 0 when nothing parses.
func parseIndex(raw json.RawMessage) int {
	if n, ok := jsonNumber(raw); ok {
		return int(math.Trunc(n))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
