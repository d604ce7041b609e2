// Package validation provides data-driven field validators applied by the
// storage layer before persisting records.
package validation

import (
	"regexp"

	internalerrors "github.com/banbrick/collector/internal/errors"
)

// Rule is a single pattern-based field check. The value must match the
// pattern or validation fails with the rule's message.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Message string
}

// Rules is an explicit set of rules handed to a storage implementation at
// construction.
type Rules struct {
	rules []Rule
}

func NewRules(rules ...Rule) *Rules {
	return &Rules{rules: rules}
}

// Validate runs every rule against the given field value.
func (r *Rules) Validate(field, value string) error {
	for _, rule := range r.rules {
		if !rule.Pattern.MatchString(value) {
			return &internalerrors.FieldError{Field: field, Message: rule.Message}
		}
	}
	return nil
}

// SafetyString rejects characters that are unsafe in name fields.
func SafetyString() Rule {
	return Rule{
		Name:    "safety_string",
		Pattern: regexp.MustCompile(`^[^\[\]()<>="',:]+$`),
		Message: `not allow match in: []()<>="',:`,
	}
}
