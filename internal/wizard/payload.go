package wizard

import (
	"gatsby-glass-visualizer/internal/catalog"
	"gatsby-glass-visualizer/internal/prompt"
)

// Design modes.
const (
	ModeConfigure   = "configure"
	ModeInspiration = "inspiration"
)

// HingedConfig holds hinged-door sub-options.
type HingedConfig struct {
	ToCeiling bool   `json:"to_ceiling"`
	Direction string `json:"direction"`
}

// PivotConfig holds pivot-door sub-options.
type PivotConfig struct {
	Direction string `json:"direction"`
}

// SlidingConfig holds sliding-door sub-options.
type SlidingConfig struct {
	Configuration string `json:"configuration"`
	Direction     string `json:"direction"`
}

type TowelBar struct {
	Enabled bool   `json:"enabled"`
	Style   string `json:"style,omitempty"`
}

// OptionalConfig holds secondary selections that do not affect step gating.
type OptionalConfig struct {
	GlassHeight    string   `json:"glass_height"`
	CustomHeightIn int      `json:"custom_height_in"`
	TowelBar       TowelBar `json:"towel_bar"`
}

// Payload is the complete visualization configuration a session carries.
// All fields are plain values, so copying a Payload yields an independent
// snapshot.
type Payload struct {
	Mode            string         `json:"mode"`
	ImageRef        string         `json:"image_ref"`
	EnclosureType   string         `json:"enclosure_type"`
	ShowerShape     string         `json:"shower_shape"`
	GlassStyle      string         `json:"glass_style"`
	HardwareFinish  string         `json:"hardware_finish"`
	HandleStyle     string         `json:"handle_style"`
	HingedConfig    HingedConfig   `json:"hinged_config"`
	PivotConfig     PivotConfig    `json:"pivot_config"`
	SlidingConfig   SlidingConfig  `json:"sliding_config"`
	TrackPreference string         `json:"track_preference"`
	Optional        OptionalConfig `json:"optional"`
	UserNotes       string         `json:"user_notes"`
	SessionID       string         `json:"session_id"`
	CatalogVersion  string         `json:"catalog_version"`
}

func DefaultPayload() Payload {
	return Payload{
		Mode:           ModeConfigure,
		EnclosureType:  "hinged",
		ShowerShape:    "standard",
		GlassStyle:     "clear",
		HardwareFinish: "matte_black",
		HandleStyle:    "ladder",
		HingedConfig: HingedConfig{
			ToCeiling: false,
			Direction: "swing_left",
		},
		PivotConfig: PivotConfig{
			Direction: "swing_left",
		},
		SlidingConfig: SlidingConfig{
			Configuration: "single_door",
			Direction:     "sliding_left",
		},
		TrackPreference: "frameless",
		Optional: OptionalConfig{
			GlassHeight: "standard",
		},
		CatalogVersion: catalog.Version,
	}
}

// PromptConfig converts the payload into builder input. Only the sub-config
// matching the selected enclosure type is carried over, so the prompt never
// mixes door variants.
func (p Payload) PromptConfig() prompt.VisualizationConfig {
	cfg := prompt.VisualizationConfig{
		ShowerShape:     p.ShowerShape,
		EnclosureType:   p.EnclosureType,
		GlassStyle:      p.GlassStyle,
		HardwareFinish:  p.HardwareFinish,
		HandleStyle:     p.HandleStyle,
		TrackPreference: p.TrackPreference,
	}

	switch p.EnclosureType {
	case "hinged":
		cfg.Hinged = &prompt.HingedOptions{
			ToCeiling: p.HingedConfig.ToCeiling,
			Direction: p.HingedConfig.Direction,
		}
	case "pivot":
		cfg.Pivot = &prompt.PivotOptions{
			Direction: p.PivotConfig.Direction,
		}
	case "sliding":
		cfg.Sliding = &prompt.SlidingOptions{
			Configuration: p.SlidingConfig.Configuration,
			Direction:     p.SlidingConfig.Direction,
		}
	}

	return cfg
}
