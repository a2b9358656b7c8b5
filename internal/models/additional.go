// internal/models/additional.go
package models

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AdditionalEntities maps entity type keys to text values in insertion order.
type AdditionalEntities struct {
	m *orderedmap.OrderedMap[string, string]
}

func NewAdditionalEntities() *AdditionalEntities {
	return &AdditionalEntities{m: orderedmap.New[string, string]()}
}

func (a *AdditionalEntities) ensure() {
	if a.m == nil {
		a.m = orderedmap.New[string, string]()
	}
}

// Set stores value under key. An existing key is left untouched and false is returned.
func (a *AdditionalEntities) Set(key, value string) bool {
	a.ensure()
	if _, exists := a.m.Get(key); exists {
		return false
	}
	a.m.Set(key, value)
	return true
}

func (a *AdditionalEntities) Get(key string) (string, bool) {
	if a == nil || a.m == nil {
		return "", false
	}
	return a.m.Get(key)
}

func (a *AdditionalEntities) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

func (a *AdditionalEntities) Len() int {
	if a == nil || a.m == nil {
		return 0
	}
	return a.m.Len()
}

// Keys returns the keys in insertion order.
func (a *AdditionalEntities) Keys() []string {
	if a == nil || a.m == nil {
		return []string{}
	}
	keys := make([]string, 0, a.m.Len())
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (a *AdditionalEntities) MarshalJSON() ([]byte, error) {
	if a == nil || a.m == nil || a.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(a.m)
}

func (a *AdditionalEntities) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, string]()
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	a.m = m
	return nil
}
