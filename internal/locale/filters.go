// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package locale

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"docforge/internal/models"
	"docforge/internal/value"
)

// Filter names understood by the default registry.
const (
	FilterDate      = "date"
	FilterCurrency  = "currency"
	FilterUppercase = "uppercase"
	FilterLowercase = "lowercase"
)

// DefaultCurrency is the ISO 4217 code used when none is configured.
const DefaultCurrency = "RON"

// FilterFunc formats a present value for the given language.
type FilterFunc func(v value.Value, lang Language) (string, error)

// Registry maps filter names to formatting functions. It is safe for
// concurrent use; Register is expected at startup only.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]FilterFunc
	unit    currency.Unit
}

// NewRegistry returns a registry with the built-in filters. Currency
// amounts are formatted in the given ISO 4217 code.
func NewRegistry(currencyCode string) (*Registry, error) {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}

	r := &Registry{
		filters: make(map[string]FilterFunc),
		unit:    unit,
	}
	r.filters[FilterDate] = formatDate
	r.filters[FilterCurrency] = r.formatCurrency
	r.filters[FilterUppercase] = func(v value.Value, lang Language) (string, error) {
		return cases.Upper(lang.Tag()).String(v.String()), nil
	}
	r.filters[FilterLowercase] = func(v value.Value, lang Language) (string, error) {
		return cases.Lower(lang.Tag()).String(v.String()), nil
	}
	return r, nil
}

// MustRegistry is NewRegistry for package-level defaults and tests.
func MustRegistry(currencyCode string) *Registry {
	r, err := NewRegistry(currencyCode)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds or replaces a filter.
func (r *Registry) Register(name string, fn FilterFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = fn
}

// Currency returns the ISO code amounts are formatted in.
func (r *Registry) Currency() string {
	return r.unit.String()
}

// Apply formats v with the named filter. Absent and null values always
// render as the empty string. An empty or unknown filter name stringifies
// the value unchanged.
func (r *Registry) Apply(v value.Value, filter string, lang Language) (string, error) {
	if v.IsNil() {
		return "", nil
	}
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return v.String(), nil
	}

	r.mu.RLock()
	fn, ok := r.filters[filter]
	r.mu.RUnlock()
	if !ok {
		slog.Debug("unknown filter, value passed through", "filter", filter)
		return v.String(), nil
	}

	out, err := fn(v, lang)
	if err != nil {
		return "", &models.FormatError{Filter: filter, Value: v.String(), Err: err}
	}
	return out, nil
}

// formatDate prints a date using the numeric short form of the language:
// 15.10.2026 for Romanian, 10/15/2026 otherwise.
func formatDate(v value.Value, lang Language) (string, error) {
	t, err := value.ToTime(v)
	if err != nil {
		return "", err
	}
	if lang == Romanian {
		return t.Format("02.01.2006"), nil
	}
	return t.Format("1/2/2006"), nil
}

// formatCurrency prints an amount with locale grouping and decimal marks.
// Romanian places the code after the amount (1.234,50 RON); other
// languages place it before (RON 1,234.50).
func (r *Registry) formatCurrency(v value.Value, lang Language) (string, error) {
	amount, err := value.ToFloat(v)
	if err != nil {
		return "", err
	}

	scale, _ := currency.Standard.Rounding(r.unit)
	p := message.NewPrinter(lang.Tag())
	num := p.Sprint(number.Decimal(amount, number.Scale(scale)))

	if lang == Romanian {
		return num + " " + r.unit.String(), nil
	}
	return r.unit.String() + " " + num, nil
}
