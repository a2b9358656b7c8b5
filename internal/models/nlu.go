// internal/models/nlu.go
package models

import (
	"bytes"
	"encoding/json"
)

// NLUResponse is the payload returned by the upstream language-understanding service.
type NLUResponse struct {
	Query             string            `json:"query"`
	TopScoringIntent  *ScoredIntent     `json:"topScoringIntent,omitempty"`
	Entities          []EntityRecord    `json:"entities"`
	CompositeEntities []CompositeEntity `json:"compositeEntities,omitempty"`
}

type ScoredIntent struct {
	Intent string  `json:"intent"`
	Score  float64 `json:"score"`
}

type EntityRecord struct {
	Type       string      `json:"type"`
	Entity     string      `json:"entity"`
	StartIndex int         `json:"startIndex"`
	EndIndex   int         `json:"endIndex"`
	Role       string      `json:"role,omitempty"`
	Score      *float64    `json:"score,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

// Resolution carries either a list of candidate values (date/time entities)
// or a single value with a subtype (numbers, dimensions, ...).
type Resolution struct {
	Values  []ResolutionValue `json:"values,omitempty"`
	Value   string            `json:"value,omitempty"`
	Subtype string            `json:"subtype,omitempty"`
}

type ResolutionValue struct {
	Timex string `json:"timex,omitempty"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// UnmarshalJSON accepts both the object form used by date/time entities and
// the bare string form used by list entities.
func (v *ResolutionValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = ResolutionValue{Value: s}
		return nil
	}

	type plain ResolutionValue
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*v = ResolutionValue(p)
	return nil
}

type CompositeEntity struct {
	ParentType string           `json:"parentType"`
	Value      string           `json:"value"`
	Children   []CompositeChild `json:"children"`
}

type CompositeChild struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
