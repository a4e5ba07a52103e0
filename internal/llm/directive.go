package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Directive is the structured reply the orchestration prompt demands
// from the model: a customer-facing response plus control flags.
type Directive struct {
	Response   string   `json:"Response"`
	Agents     []string `json:"Agents"`
	SalarySlip bool     `json:"Salary_slip"`
	Finalise   bool     `json:"Finalise"`
}

var errNoJSON = errors.New("llm: no JSON object in model output")

// ParseDirective extracts a Directive from raw model output. Models
// routinely wrap the JSON in markdown fences or prepend prose, so the
// parser strips fences and falls back to the widest {...} window
// before unmarshalling. The Response field must be present.
func ParseDirective(text string) (Directive, error) {
	var d Directive

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		parts := strings.Split(text, "```")
		if len(parts) >= 2 {
			text = strings.TrimSpace(strings.TrimPrefix(parts[1], "json"))
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last <= first {
		return d, errNoJSON
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(text[first:last+1]), &raw); err != nil {
		return d, fmt.Errorf("llm: invalid directive JSON: %w", err)
	}
	if _, ok := raw["Response"]; !ok {
		return d, errors.New("llm: directive missing Response field")
	}
	if err := json.Unmarshal([]byte(text[first:last+1]), &d); err != nil {
		return d, fmt.Errorf("llm: invalid directive JSON: %w", err)
	}
	return d, nil
}
