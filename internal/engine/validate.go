// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"docforge/internal/models"
	"docforge/internal/value"
)

// Validator checks a value bag against a template's declared variables
// before interpretation. It stops at the first failure, in declaration
// order.
type Validator struct {
	patterns sync.Map // pattern string -> *regexp.Regexp
}

// NewValidator returns a Validator with an empty pattern cache.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns nil when every declared variable is satisfied, or a
// *models.ValidationError naming the first offending variable.
func (v *Validator) Validate(t *models.Template, bag value.Value) error {
	for _, decl := range t.Variables {
		got := value.Resolve(bag, decl.Name)

		if isBlank(got) {
			if decl.Required {
				return models.MissingVariable(decl.Name)
			}
			continue
		}

		if reason := checkType(decl.Type, got); reason != "" {
			return models.ConstraintViolation(decl.Name, reason)
		}
		if decl.Validation != nil {
			if reason := v.checkBounds(decl.Validation, got); reason != "" {
				return models.ConstraintViolation(decl.Name, reason)
			}
		}
	}
	return nil
}

// isBlank treats absent, null and the empty string as missing.
func isBlank(v value.Value) bool {
	if v.IsNil() {
		return true
	}
	s, ok := v.Str()
	return ok && s == ""
}

func checkType(typ models.VariableType, v value.Value) string {
	switch typ {
	case models.VariableNumber, models.VariableCurrency:
		if _, err := value.ToFloat(v); err != nil {
			return "must be a number"
		}
	case models.VariableDate:
		if _, err := value.ToTime(v); err != nil {
			return "must be a date"
		}
	case models.VariableBoolean:
		if _, ok := v.BoolVal(); ok {
			return ""
		}
		if s, ok := v.Str(); ok && (s == "true" || s == "false") {
			return ""
		}
		return "must be a boolean"
	case models.VariableList:
		if v.Kind() != value.KindList {
			return "must be a list"
		}
	case models.VariableObject:
		if v.Kind() != value.KindMap {
			return "must be an object"
		}
	}
	return ""
}

func (v *Validator) checkBounds(rules *models.Validation, got value.Value) string {
	s := got.String()
	n := utf8.RuneCountInString(s)

	if rules.MinLength != nil && n < *rules.MinLength {
		return fmt.Sprintf("length %d is below minimum %d", n, *rules.MinLength)
	}
	if rules.MaxLength != nil && n > *rules.MaxLength {
		return fmt.Sprintf("length %d exceeds maximum %d", n, *rules.MaxLength)
	}
	if rules.Pattern != "" {
		re, err := v.compile(rules.Pattern)
		if err != nil {
			return fmt.Sprintf("invalid pattern %q", rules.Pattern)
		}
		if !re.MatchString(s) {
			return fmt.Sprintf("does not match pattern %q", rules.Pattern)
		}
	}
	if len(rules.Options) > 0 && !slices.Contains(rules.Options, s) {
		return fmt.Sprintf("must be one of %s", strings.Join(rules.Options, ", "))
	}
	return ""
}

func (v *Validator) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := v.patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	v.patterns.Store(pattern, re)
	return re, nil
}

// ApplyDefaults returns bag with every declared default filled in where the
// path is absent or null. The input bag is not modified.
func ApplyDefaults(vars []models.Variable, bag value.Value) value.Value {
	for _, decl := range vars {
		if decl.Default == nil || decl.Default.IsNil() {
			continue
		}
		if value.Resolve(bag, decl.Name).IsNil() {
			bag = value.With(bag, decl.Name, *decl.Default)
		}
	}
	return bag
}
