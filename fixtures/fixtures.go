package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrNotFound is returned for any lookup of a key the fixture file lacks.
var ErrNotFound = errors.New("fixture not found")

// Set is a fixture file keyed by scenario name. Sections are decoded lazily so
// one malformed section does not break unrelated scenarios.
type Set struct {
	path     string
	sections map[string]json.RawMessage
}

func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(path, data)
}

func Parse(name string, data []byte) (*Set, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", name, err)
	}
	return &Set{path: name, sections: sections}, nil
}

// Decode unmarshals the section stored under key into v.
func (s *Set) Decode(key string, v any) error {
	raw, ok := s.sections[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: %q in %s", ErrNotFound, key, s.path)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode fixture %q: %w", key, err)
	}
	return nil
}

func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.sections))
	for k := range s.sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Set) Search() (*SearchData, error) {
	var d SearchData
	if err := s.Decode("search", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Set) Filters() (*FilterData, error) {
	var d FilterData
	if err := s.Decode("filters", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Set) Registration() ([]RegistrationCase, error) {
	var d []RegistrationCase
	if err := s.Decode("registration", &d); err != nil {
		return nil, err
	}
	return d, nil
}

// MockAPI returns the canned body for a logical API name.
func (s *Set) MockAPI(name string) ([]byte, error) {
	var apis map[string]json.RawMessage
	if err := s.Decode("mockApi", &apis); err != nil {
		return nil, err
	}
	body, ok := apis[name]
	if !ok {
		return nil, fmt.Errorf("%w: mockApi.%s in %s", ErrNotFound, name, s.path)
	}
	return body, nil
}
