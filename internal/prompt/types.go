package prompt

import (
	"gatsby-glass-visualizer/internal/catalog"
)

// TemplateType selects which active template a builder works from.
type TemplateType string

const (
	TypeVisualization TemplateType = "visualization"
	TypeInspiration   TemplateType = "inspiration"
	TypeValidation    TemplateType = "validation"
	TypeSystem        TemplateType = "system"
)

// VariableType tags how a declared variable is resolved to its string form.
type VariableType string

const (
	VarString        VariableType = "string"
	VarBoolean       VariableType = "boolean"
	VarNumber        VariableType = "number"
	VarCatalogLookup VariableType = "catalog_lookup"
	VarConditional   VariableType = "conditional"
)

// Condition operators. And/Or carry sub-conditions, the rest compare a
// single variable from the raw input bag.
const (
	OpEquals    = "equals"
	OpNotEquals = "not_equals"
	OpExists    = "exists"
	OpNotExists = "not_exists"
	OpIn        = "in"
	OpNotIn     = "not_in"
	OpAnd       = "and"
	OpOr        = "or"
)

// Variable declares a template input and how to resolve it.
type Variable struct {
	Name            string
	Type            VariableType
	Catalog         string // catalog_lookup only
	CatalogProperty string // default "name"
	Default         any
	Required        bool
	Description     string
}

// Condition gates a section. Either a simple comparison (Variable/Operator/
// Value) or a compound node (Operator and/or over Conditions).
type Condition struct {
	Variable   string
	Operator   string
	Value      any
	Conditions []Condition
}

// Section is a node in the template's section tree. A false condition
// suppresses the section and every descendant.
type Section struct {
	ID        string
	Type      string // header | specifications | configuration | instructions | custom
	Condition *Condition
	Content   []string
	Children  []Section
}

// Template is an immutable, versioned prompt definition.
type Template struct {
	ID          string
	Version     string
	Name        string
	Type        TemplateType
	Description string
	Sections    []Section
	Variables   []Variable
}

// TemplateRef identifies the template a prompt was produced from.
type TemplateRef struct {
	ID      string       `json:"id"`
	Version string       `json:"version"`
	Type    TemplateType `json:"type"`
}

// ProcessedPrompt is the immutable result of processing a template.
type ProcessedPrompt struct {
	Text              string            `json:"text"`
	Template          TemplateRef       `json:"template"`
	Hash              string            `json:"hash"`
	ResolvedVariables map[string]string `json:"resolvedVariables"`
	Warnings          []string          `json:"warnings,omitempty"`
}

// Catalog is the product data the engine resolves catalog_lookup variables
// against: catalog name -> option key -> entry.
type Catalog = map[string]map[string]catalog.Entry

// Transformer converts a raw input value into its final string form,
// bypassing default stringification.
type Transformer func(value any) string
