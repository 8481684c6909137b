package prompt

import (
	"fmt"
	"strings"
)

// HingedOptions configures a hinged door variant.
type HingedOptions struct {
	ToCeiling bool
	Direction string
}

// PivotOptions configures a pivot door variant.
type PivotOptions struct {
	Direction string
}

// SlidingOptions configures a sliding door variant.
type SlidingOptions struct {
	Configuration string
	Direction     string
}

// VisualizationConfig carries the user's full selection for a configured
// visualization. Exactly one of Hinged, Pivot, Sliding should be set,
// matching EnclosureType.
type VisualizationConfig struct {
	ShowerShape     string
	EnclosureType   string
	GlassStyle      string
	HardwareFinish  string
	HandleStyle     string
	TrackPreference string
	Hinged          *HingedOptions
	Pivot           *PivotOptions
	Sliding         *SlidingOptions
}

// BuildVisualizationPrompt processes the active visualization template with
// the given configuration and records the result in the cache.
func (e *Engine) BuildVisualizationPrompt(cfg VisualizationConfig) (ProcessedPrompt, error) {
	tpl, err := ActiveTemplate(TypeVisualization)
	if err != nil {
		return ProcessedPrompt{}, err
	}

	variables := map[string]any{
		"shower_shape":     cfg.ShowerShape,
		"enclosure_type":   cfg.EnclosureType,
		"glass_style":      cfg.GlassStyle,
		"hardware_finish":  cfg.HardwareFinish,
		"handle_style":     cfg.HandleStyle,
		"track_preference": cfg.TrackPreference,

		"door_type_description":       e.catalogLookup("enclosureTypes", cfg.EnclosureType, "description"),
		"glass_style_description":     e.catalogLookup("glassStyles", cfg.GlassStyle, "description"),
		"hardware_finish_description": e.catalogLookup("hardwareFinishes", cfg.HardwareFinish, "description"),
		"handle_style_description":    e.catalogLookup("handleStyles", cfg.HandleStyle, "description"),
		"framing_description":         e.catalogLookup("trackPreferences", cfg.TrackPreference, "description"),
	}

	if cfg.Hinged != nil {
		variables["hinged_to_ceiling"] = yesNo(cfg.Hinged.ToCeiling)
		variables["hinged_direction"] = spaced(cfg.Hinged.Direction)
	}
	if cfg.Pivot != nil {
		variables["pivot_direction"] = spaced(cfg.Pivot.Direction)
	}
	if cfg.Sliding != nil {
		variables["sliding_type"] = spaced(cfg.Sliding.Configuration)
		variables["sliding_direction"] = spaced(cfg.Sliding.Direction)
	}

	return e.processAndCache(tpl, variables), nil
}

// BuildInspirationPrompt processes the active inspiration template for the
// detected shower shape of the target bathroom.
func (e *Engine) BuildInspirationPrompt(showerShape string) (ProcessedPrompt, error) {
	tpl, err := ActiveTemplate(TypeInspiration)
	if err != nil {
		return ProcessedPrompt{}, err
	}
	return e.processAndCache(tpl, map[string]any{"shower_shape": showerShape}), nil
}

// SystemPrompt returns the processed system instructions for the model.
func (e *Engine) SystemPrompt() (ProcessedPrompt, error) {
	tpl, err := ActiveTemplate(TypeSystem)
	if err != nil {
		return ProcessedPrompt{}, err
	}
	return e.processAndCache(tpl, map[string]any{}), nil
}

// ValidationPrompt returns the processed image-validation instructions.
func (e *Engine) ValidationPrompt() (ProcessedPrompt, error) {
	tpl, err := ActiveTemplate(TypeValidation)
	if err != nil {
		return ProcessedPrompt{}, err
	}
	return e.processAndCache(tpl, map[string]any{}), nil
}

func (e *Engine) processAndCache(tpl *Template, variables map[string]any) ProcessedPrompt {
	processed := e.Process(tpl, variables)
	if e.cache != nil {
		e.cache.Put(processed, variables)
	}
	return processed
}

// spaced turns snake_case option keys into the human form the templates
// expect ("swing_left" -> "swing left").
func spaced(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// Describe formats a configuration for history labels and logs.
func (cfg VisualizationConfig) Describe() string {
	return fmt.Sprintf("%s/%s/%s/%s", cfg.ShowerShape, cfg.EnclosureType, cfg.GlassStyle, cfg.HardwareFinish)
}
