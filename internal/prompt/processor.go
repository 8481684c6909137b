package prompt

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Options configures an Engine. The cache is injected so callers can share
// one process-lifetime instance or build isolated ones per test.
type Options struct {
	Catalog          Catalog
	Cache            *Cache
	Transformers     map[string]Transformer
	StrictValidation bool
	Logger           *slog.Logger
}

type Engine struct {
	catalog      Catalog
	cache        *Cache
	transformers map[string]Transformer
	strict       bool
	logger       *slog.Logger
}

func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		catalog:      opts.Catalog,
		cache:        opts.Cache,
		transformers: opts.Transformers,
		strict:       opts.StrictValidation,
		logger:       logger,
	}
}

func (e *Engine) Cache() *Cache { return e.cache }

// Process resolves variables, walks the section tree, and joins the output
// lines into the final prompt text. It is pure: the template is never
// mutated and no I/O happens beyond warning logs.
func (e *Engine) Process(tpl *Template, inputVariables map[string]any) ProcessedPrompt {
	resolved, warnings := e.resolveVariables(tpl, inputVariables)

	var lines []string
	for i := range tpl.Sections {
		lines = append(lines, processSection(&tpl.Sections[i], resolved, inputVariables)...)
	}

	for _, w := range warnings {
		e.logger.Warn("template variable unresolved", "template", tpl.ID, "warning", w)
	}

	return ProcessedPrompt{
		Text:              strings.Join(lines, "\n"),
		Template:          TemplateRef{ID: tpl.ID, Version: tpl.Version, Type: tpl.Type},
		Hash:              HashVariables(inputVariables),
		ResolvedVariables: resolved,
		Warnings:          warnings,
	}
}

// HashVariables produces a deterministic, order-insensitive hash of a
// variable bag: sorted "key:json(value)" pairs joined by "|", run through a
// rolling 32-bit accumulator and rendered in base 36.
func HashVariables(variables map[string]any) string {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		raw, err := json.Marshal(variables[k])
		if err != nil {
			raw = []byte(fmt.Sprintf("%v", variables[k]))
		}
		parts = append(parts, k+":"+string(raw))
	}
	joined := strings.Join(parts, "|")

	var h int32
	for _, r := range joined {
		h = (h << 5) - h + int32(r)
	}
	if h < 0 {
		h = -h
	}
	return strconv.FormatInt(int64(h), 36)
}

func (e *Engine) resolveVariables(tpl *Template, input map[string]any) (map[string]string, []string) {
	resolved := make(map[string]string, len(tpl.Variables))
	var warnings []string

	for _, decl := range tpl.Variables {
		value, present := input[decl.Name]
		if value == nil {
			present = false
		}

		switch decl.Type {
		case VarCatalogLookup:
			// The declared name carries a _name suffix over the base
			// variable holding the option key (glass_style_name -> glass_style).
			baseName := strings.TrimSuffix(decl.Name, "_name")
			baseValue, ok := input[baseName]
			if ok && baseValue != nil {
				prop := decl.CatalogProperty
				if prop == "" {
					prop = "name"
				}
				resolved[decl.Name] = e.catalogLookup(decl.Catalog, stringify(baseValue), prop)
			} else if decl.Default != nil {
				resolved[decl.Name] = stringify(decl.Default)
			} else if decl.Required && e.strict {
				warnings = append(warnings, "missing required variable for catalog lookup: "+baseName)
			}

		case VarBoolean:
			if present {
				resolved[decl.Name] = yesNo(truthy(value))
			} else if decl.Default != nil {
				resolved[decl.Name] = yesNo(truthy(decl.Default))
			}

		default:
			if present {
				if tf, ok := e.transformers[decl.Name]; ok && tf != nil {
					resolved[decl.Name] = tf(value)
				} else {
					resolved[decl.Name] = stringify(value)
				}
			} else if decl.Default != nil {
				resolved[decl.Name] = stringify(decl.Default)
			} else if decl.Required && e.strict {
				warnings = append(warnings, "missing required variable: "+decl.Name)
			}
		}
	}

	return resolved, warnings
}

// catalogLookup degrades to the raw key at every missing level: unknown
// catalog, unknown entry, or unknown property all return the key itself.
func (e *Engine) catalogLookup(catalogName, key, property string) string {
	if e.catalog == nil {
		return key
	}
	entries, ok := e.catalog[catalogName]
	if !ok {
		return key
	}
	entry, ok := entries[key]
	if !ok {
		return key
	}

	switch property {
	case "name":
		if entry.Name != "" {
			return entry.Name
		}
	case "description":
		if entry.Description != "" {
			return entry.Description
		}
	}
	return key
}

// evaluateCondition works on the raw input bag, before resolution.
func evaluateCondition(cond *Condition, input map[string]any) bool {
	switch cond.Operator {
	case OpAnd:
		for i := range cond.Conditions {
			if !evaluateCondition(&cond.Conditions[i], input) {
				return false
			}
		}
		return true

	case OpOr:
		for i := range cond.Conditions {
			if evaluateCondition(&cond.Conditions[i], input) {
				return true
			}
		}
		return false
	}

	value := input[cond.Variable]

	switch cond.Operator {
	case OpEquals:
		return reflect.DeepEqual(value, cond.Value)
	case OpNotEquals:
		return !reflect.DeepEqual(value, cond.Value)
	case OpExists:
		return value != nil && value != ""
	case OpNotExists:
		return value == nil || value == ""
	case OpIn:
		list, ok := asList(cond.Value)
		if !ok {
			return false
		}
		return containsValue(list, value)
	case OpNotIn:
		list, ok := asList(cond.Value)
		if !ok {
			return true
		}
		return !containsValue(list, value)
	}

	return true
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func containsValue(list []any, value any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, value) {
			return true
		}
	}
	return false
}

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// interpolate replaces {{name}} placeholders. Placeholders without a
// resolved entry are left verbatim; that is defined behavior, not an error.
func interpolate(line string, resolved map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(line, func(match string) string {
		name := match[2 : len(match)-2]
		if v, ok := resolved[name]; ok {
			return v
		}
		return match
	})
}

// processSection returns the section's output lines. A false condition
// suppresses the section and all of its descendants.
func processSection(sec *Section, resolved map[string]string, input map[string]any) []string {
	if sec.Condition != nil && !evaluateCondition(sec.Condition, input) {
		return nil
	}

	lines := make([]string, 0, len(sec.Content))
	for _, line := range sec.Content {
		lines = append(lines, interpolate(line, resolved))
	}
	for i := range sec.Children {
		lines = append(lines, processSection(&sec.Children[i], resolved, input)...)
	}
	return lines
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// truthy mirrors the loose semantics of the variable bag: nil, false, zero
// numbers, and empty strings are false, everything else true.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}
