// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"slices"
	"time"

	"docforge/internal/value"
)

// TemplateType categorizes templates by the business document they produce.
type TemplateType string

const (
	TemplateTypeInvoice     TemplateType = "invoice"
	TemplateTypeContract    TemplateType = "contract"
	TemplateTypeReport      TemplateType = "report"
	TemplateTypeLetter      TemplateType = "letter"
	TemplateTypeReceipt     TemplateType = "receipt"
	TemplateTypeQuote       TemplateType = "quote"
	TemplateTypeOrder       TemplateType = "order"
	TemplateTypeCertificate TemplateType = "certificate"
	TemplateTypeCustom      TemplateType = "custom"
)

// TemplateTypes lists every valid template type.
var TemplateTypes = []TemplateType{
	TemplateTypeInvoice, TemplateTypeContract, TemplateTypeReport,
	TemplateTypeLetter, TemplateTypeReceipt, TemplateTypeQuote,
	TemplateTypeOrder, TemplateTypeCertificate, TemplateTypeCustom,
}

// Valid reports whether t is one of the closed set of template types.
func (t TemplateType) Valid() bool {
	return slices.Contains(TemplateTypes, t)
}

// TemplateStatus is the lifecycle state of a template.
type TemplateStatus string

const (
	TemplateStatusDraft      TemplateStatus = "draft"
	TemplateStatusActive     TemplateStatus = "active"
	TemplateStatusArchived   TemplateStatus = "archived"
	TemplateStatusDeprecated TemplateStatus = "deprecated"
)

// LanguageMode declares which language(s) a template is authored in.
type LanguageMode string

const (
	LanguageModeRO        LanguageMode = "ro"
	LanguageModeEN        LanguageMode = "en"
	LanguageModeBilingual LanguageMode = "bilingual"
)

// Markup declares how the body text is authored.
type Markup string

const (
	MarkupHTML     Markup = "html"
	MarkupMarkdown Markup = "markdown"
	MarkupText     Markup = "text"
)

// OutputFormat is a format a template may be rendered into. The engine
// only produces substituted markup tagged with the format; binary
// rendering happens downstream.
type OutputFormat string

const (
	FormatPDF  OutputFormat = "pdf"
	FormatDOCX OutputFormat = "docx"
	FormatHTML OutputFormat = "html"
	FormatTXT  OutputFormat = "txt"
)

// OutputFormats lists every known output format.
var OutputFormats = []OutputFormat{FormatPDF, FormatDOCX, FormatHTML, FormatTXT}

// Valid reports whether f is a known output format.
func (f OutputFormat) Valid() bool {
	return slices.Contains(OutputFormats, f)
}

// ContentType returns the MIME type of markup handed to the renderer.
func (f OutputFormat) ContentType() string {
	if f == FormatTXT {
		return "text/plain; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// Content is the header/body/footer triple of a template.
type Content struct {
	Header   string       `json:"header,omitempty" yaml:"header"`
	Body     string       `json:"body" yaml:"body"`
	Footer   string       `json:"footer,omitempty" yaml:"footer"`
	Language LanguageMode `json:"language" yaml:"language"`
	Markup   Markup       `json:"markup,omitempty" yaml:"markup"`
}

// VariableType is the declared type tag of a template variable.
type VariableType string

const (
	VariableText     VariableType = "text"
	VariableNumber   VariableType = "number"
	VariableCurrency VariableType = "currency"
	VariableDate     VariableType = "date"
	VariableBoolean  VariableType = "boolean"
	VariableList     VariableType = "list"
	VariableObject   VariableType = "object"
)

// Validation holds optional bounds checked by the variable validator.
type Validation struct {
	MinLength *int     `json:"min_length,omitempty" yaml:"min_length"`
	MaxLength *int     `json:"max_length,omitempty" yaml:"max_length"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern"`
	Options   []string `json:"options,omitempty" yaml:"options"`
}

// Variable declares one input a template expects. Name is a dotted path
// into the value bag.
type Variable struct {
	Name        string       `json:"name" yaml:"name"`
	Label       string       `json:"label" yaml:"label"`
	LabelRO     string       `json:"label_ro,omitempty" yaml:"label_ro"`
	Type        VariableType `json:"type" yaml:"type"`
	Required    bool         `json:"required" yaml:"required"`
	Default     *value.Value `json:"default,omitempty" yaml:"default"`
	Validation  *Validation  `json:"validation,omitempty" yaml:"validation"`
	Description string       `json:"description,omitempty" yaml:"description"`
}

// SectionKind describes how a section behaves in editing tools.
type SectionKind string

const (
	SectionStatic      SectionKind = "static"
	SectionConditional SectionKind = "conditional"
	SectionRepeatable  SectionKind = "repeatable"
	SectionOptional    SectionKind = "optional"
)

// Section is a structural marker consumed by editing tooling. The
// interpreter does not read it.
type Section struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Kind      SectionKind `json:"kind" yaml:"kind"`
	Condition string      `json:"condition,omitempty" yaml:"condition"`
	Order     int         `json:"order" yaml:"order"`
}

// Styling is passed through to the renderer without interpretation.
type Styling struct {
	FontFamily   string  `json:"font_family,omitempty" yaml:"font_family"`
	FontSize     int     `json:"font_size,omitempty" yaml:"font_size"`
	PrimaryColor string  `json:"primary_color,omitempty" yaml:"primary_color"`
	AccentColor  string  `json:"accent_color,omitempty" yaml:"accent_color"`
	PageSize     string  `json:"page_size,omitempty" yaml:"page_size"`
	Orientation  string  `json:"orientation,omitempty" yaml:"orientation"`
	Margins      Margins `json:"margins" yaml:"margins"`
}

// Margins are page margins in millimetres.
type Margins struct {
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
	Left   int `json:"left" yaml:"left"`
}

// Metadata holds grouping and usage information.
type Metadata struct {
	Category    string   `json:"category,omitempty" yaml:"category"`
	Tags        []string `json:"tags,omitempty" yaml:"tags"`
	UsageCount  int64    `json:"usage_count" yaml:"-"`
	IsCompliant bool     `json:"is_compliant" yaml:"is_compliant"`
}

// Template is a versioned document blueprint.
type Template struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	NameRO        string         `json:"name_ro,omitempty"`
	Description   string         `json:"description,omitempty"`
	Type          TemplateType   `json:"type"`
	Status        TemplateStatus `json:"status"`
	Version       int            `json:"version"`
	Content       Content        `json:"content"`
	Variables     []Variable     `json:"variables"`
	Sections      []Section      `json:"sections"`
	Styling       Styling        `json:"styling"`
	OutputFormats []OutputFormat `json:"output_formats"`
	Metadata      Metadata       `json:"metadata"`
	IsSystem      bool           `json:"is_system"`
	CreatedBy     string         `json:"created_by"`
	TenantID      string         `json:"tenant_id,omitempty"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsActive returns true if the template can be rendered.
func (t *Template) IsActive() bool {
	return t.Status == TemplateStatusActive
}

// SupportsFormat reports whether f is among the declared output formats.
func (t *Template) SupportsFormat(f OutputFormat) bool {
	return slices.Contains(t.OutputFormats, f)
}

// Clone returns a deep copy so callers can hold a consistent snapshot
// while the stored template keeps changing.
func (t *Template) Clone() *Template {
	c := *t
	c.Variables = cloneVariables(t.Variables)
	c.Sections = slices.Clone(t.Sections)
	c.OutputFormats = slices.Clone(t.OutputFormats)
	c.Metadata.Tags = slices.Clone(t.Metadata.Tags)
	if t.PublishedAt != nil {
		p := *t.PublishedAt
		c.PublishedAt = &p
	}
	return &c
}

func cloneVariables(vars []Variable) []Variable {
	if vars == nil {
		return nil
	}
	out := make([]Variable, len(vars))
	for i, v := range vars {
		out[i] = v
		if v.Validation != nil {
			val := *v.Validation
			val.Options = slices.Clone(v.Validation.Options)
			out[i].Validation = &val
		}
	}
	return out
}

// TemplateVersion is an immutable snapshot appended to a template's history.
type TemplateVersion struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"template_id"`
	Version    int        `json:"version"`
	Content    Content    `json:"content"`
	Variables  []Variable `json:"variables"`
	Sections   []Section  `json:"sections"`
	Changelog  string     `json:"changelog"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Snapshot captures the versioned parts of t as a history entry.
func (t *Template) Snapshot(id, changelog, actor string, at time.Time) *TemplateVersion {
	return &TemplateVersion{
		ID:         id,
		TemplateID: t.ID,
		Version:    t.Version,
		Content:    t.Content,
		Variables:  cloneVariables(t.Variables),
		Sections:   slices.Clone(t.Sections),
		Changelog:  changelog,
		CreatedBy:  actor,
		CreatedAt:  at,
	}
}

// Clone returns a deep copy of the snapshot.
func (v *TemplateVersion) Clone() *TemplateVersion {
	c := *v
	c.Variables = cloneVariables(v.Variables)
	c.Sections = slices.Clone(v.Sections)
	return &c
}

// ApplyTo copies the versioned parts of the snapshot onto t.
func (v *TemplateVersion) ApplyTo(t *Template) {
	t.Content = v.Content
	t.Variables = cloneVariables(v.Variables)
	t.Sections = slices.Clone(v.Sections)
}

// TemplateFilter narrows template listings. Zero fields do not filter.
type TemplateFilter struct {
	Type     TemplateType
	Status   TemplateStatus
	Category string
	TenantID string
	IsSystem *bool
	Search   string
}

// Match reports whether t satisfies every set criterion.
func (f TemplateFilter) Match(t *Template) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.Metadata.Category != f.Category {
		return false
	}
	if f.TenantID != "" && t.TenantID != f.TenantID {
		return false
	}
	if f.IsSystem != nil && t.IsSystem != *f.IsSystem {
		return false
	}
	if f.Search != "" && !containsFold(t.Name, f.Search) && !containsFold(t.NameRO, f.Search) {
		return false
	}
	return true
}
