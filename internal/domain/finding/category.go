package finding

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category classifies the kind of scanner that produced a finding.
type Category int

const (
	CategoryUnknown Category = iota
	CategorySAST
	CategoryIaC
	CategoryContainer
	CategorySecret
	CategoryDependency
	CategoryPolicy
)

var categoryNames = map[Category]string{
	CategoryUnknown:    "unknown",
	CategorySAST:       "sast",
	CategoryIaC:        "iac",
	CategoryContainer:  "container",
	CategorySecret:     "secret",
	CategoryDependency: "dependency",
	CategoryPolicy:     "policy",
}

var categoryValues = map[string]Category{
	"unknown":    CategoryUnknown,
	"sast":       CategorySAST,
	"iac":        CategoryIaC,
	"container":  CategoryContainer,
	"secret":     CategorySecret,
	"dependency": CategoryDependency,
	"policy":     CategoryPolicy,
}

// String returns the string representation of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCategory converts a string to a Category value.
func ParseCategory(s string) (Category, error) {
	if c, ok := categoryValues[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return CategoryUnknown, fmt.Errorf("invalid category: %q", s)
}

// MarshalJSON implements json.Marshaler.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Category) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseCategory(str)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
