package prompt

import "fmt"

var visualizationTemplate = Template{
	ID:          "visualization-v2",
	Version:     "2.0.0",
	Name:        "Shower Visualization Prompt",
	Type:        TypeVisualization,
	Description: "Main prompt template for generating photorealistic shower glass visualizations",
	Sections: []Section{
		{
			ID:   "header",
			Type: "header",
			Content: []string{
				"You are editing a photo of a bathroom to show a NEW shower glass door installation.",
				"",
				"IMPORTANT: You must REPLACE any existing shower glass/door with the NEW configuration specified below.",
				"Do NOT keep the existing shower door - REMOVE it and install the new one as described.",
			},
		},
		{
			ID:   "task",
			Type: "specifications",
			Content: []string{
				"",
				"=== YOUR TASK ===",
				"Remove any existing shower glass, door, or panel from this {{shower_shape}} shower.",
				"Replace it with a COMPLETELY NEW shower enclosure as specified below.",
				"",
			},
		},
		{
			ID:   "door_type_spec",
			Type: "specifications",
			Content: []string{
				"=== DOOR TYPE: {{enclosure_type_name}} ===",
				"{{door_type_description}}",
				"",
			},
		},
		{
			ID:   "glass_spec",
			Type: "specifications",
			Content: []string{
				"=== GLASS STYLE: {{glass_style_name}} ===",
				"{{glass_style_description}}",
				"",
			},
		},
		{
			ID:   "hardware_spec",
			Type: "specifications",
			Content: []string{
				"=== HARDWARE FINISH: {{hardware_finish_name}} ===",
				"{{hardware_finish_description}}",
				"",
			},
		},
		{
			ID:   "handle_spec",
			Type: "specifications",
			Content: []string{
				"=== HANDLE STYLE: {{handle_style_name}} ===",
				"{{handle_style_description}}",
				"",
			},
		},
		{
			ID:   "framing_spec",
			Type: "specifications",
			Content: []string{
				"=== FRAMING: {{track_preference_name}} ===",
				"{{framing_description}}",
				"",
			},
		},
		{
			ID:        "hinged_config",
			Type:      "configuration",
			Condition: &Condition{Variable: "enclosure_type", Operator: OpEquals, Value: "hinged"},
			Content: []string{
				"=== HINGED DOOR CONFIGURATION ===",
				"- Extends to ceiling: {{hinged_to_ceiling}}",
				"- Swing direction: {{hinged_direction}}",
				"- The door must have VISIBLE HINGES on one side",
				"- The door must SWING open (not slide)",
				"",
			},
		},
		{
			ID:        "pivot_config",
			Type:      "configuration",
			Condition: &Condition{Variable: "enclosure_type", Operator: OpEquals, Value: "pivot"},
			Content: []string{
				"=== PIVOT DOOR CONFIGURATION ===",
				"- Swing direction: {{pivot_direction}}",
				"- The door must have PIVOT HARDWARE at top and bottom",
				"- The door rotates on a pivot axis (not side hinges)",
				"",
			},
		},
		{
			ID:        "sliding_config",
			Type:      "configuration",
			Condition: &Condition{Variable: "enclosure_type", Operator: OpEquals, Value: "sliding"},
			Content: []string{
				"=== SLIDING DOOR CONFIGURATION ===",
				"- Type: {{sliding_type}}",
				"- Slide direction: {{sliding_direction}}",
				"- Must show TRACK/RAIL at the top",
				"- Door slides horizontally on track (does NOT swing)",
				"",
			},
		},
		{
			ID:   "instructions",
			Type: "instructions",
			Content: []string{
				"=== CRITICAL REQUIREMENTS ===",
				"",
				"1. REMOVE the existing shower glass/door completely",
				"2. INSTALL the new {{enclosure_type_name}} exactly as described above",
				"3. The new door must be CLEARLY VISIBLE and DIFFERENT from what was there before",
				"4. All hardware (hinges, handles, tracks) must be {{hardware_finish_name}}",
				"5. The handle must be a {{handle_style_name}} style",
				"6. The installation must be {{track_preference_name}}",
				"",
				"=== PRESERVE THESE ELEMENTS ===",
				"- Original bathroom lighting and color temperature",
				"- All tile work, walls, and architectural details",
				"- Fixtures (shower head, faucets, etc.)",
				"- Everything outside the shower enclosure area",
				"",
				"=== OUTPUT ===",
				"Generate a photorealistic image that looks like a professional installation photo.",
				"The new shower door should look like it was professionally installed.",
			},
		},
	},
	Variables: []Variable{
		{Name: "shower_shape", Type: VarString, Required: true, Description: "The detected shower shape (standard, neo_angle, tub)"},
		{Name: "enclosure_type", Type: VarString, Required: true, Description: "The enclosure type ID (hinged, pivot, sliding)"},
		{Name: "enclosure_type_name", Type: VarCatalogLookup, Catalog: "enclosureTypes", CatalogProperty: "name", Required: true, Description: "Human-readable enclosure type name"},
		{Name: "door_type_description", Type: VarString, Required: true, Description: "Detailed description of the door type"},
		{Name: "glass_style", Type: VarString, Required: true, Description: "The glass style ID"},
		{Name: "glass_style_name", Type: VarCatalogLookup, Catalog: "glassStyles", CatalogProperty: "name", Required: true, Description: "Human-readable glass style name"},
		{Name: "glass_style_description", Type: VarString, Required: true, Description: "Detailed description of the glass style"},
		{Name: "hardware_finish", Type: VarString, Required: true, Description: "The hardware finish ID"},
		{Name: "hardware_finish_name", Type: VarCatalogLookup, Catalog: "hardwareFinishes", CatalogProperty: "name", Required: true, Description: "Human-readable hardware finish name"},
		{Name: "hardware_finish_description", Type: VarString, Required: true, Description: "Detailed description of the hardware finish"},
		{Name: "handle_style", Type: VarString, Required: true, Description: "The handle style ID"},
		{Name: "handle_style_name", Type: VarCatalogLookup, Catalog: "handleStyles", CatalogProperty: "name", Required: true, Description: "Human-readable handle style name"},
		{Name: "handle_style_description", Type: VarString, Required: true, Description: "Detailed description of the handle style"},
		{Name: "track_preference", Type: VarString, Required: true, Description: "The framing preference ID"},
		{Name: "track_preference_name", Type: VarCatalogLookup, Catalog: "trackPreferences", CatalogProperty: "name", Required: true, Description: "Human-readable framing preference name"},
		{Name: "framing_description", Type: VarString, Required: true, Description: "Detailed description of the framing style"},
		{Name: "hinged_to_ceiling", Type: VarString, Default: "No", Description: "Whether hinged door extends to ceiling (Yes/No)"},
		{Name: "hinged_direction", Type: VarString, Description: "Hinged door swing direction"},
		{Name: "pivot_direction", Type: VarString, Description: "Pivot door swing direction"},
		{Name: "sliding_type", Type: VarString, Description: "Sliding door type (single/double)"},
		{Name: "sliding_direction", Type: VarString, Description: "Sliding door direction"},
	},
}

var inspirationTemplate = Template{
	ID:          "inspiration-v1",
	Version:     "1.0.0",
	Name:        "Inspiration Matching Prompt",
	Type:        TypeInspiration,
	Description: "Prompt template for matching an inspiration image style to a target bathroom",
	Sections: []Section{
		{
			ID:   "header",
			Type: "header",
			Content: []string{
				"Analyze the inspiration image and recreate the shower glass style in the target bathroom photo.",
			},
		},
		{
			ID:   "target_info",
			Type: "specifications",
			Content: []string{
				"",
				"TARGET SHOWER TYPE: {{shower_shape}}",
			},
		},
		{
			ID:   "instructions",
			Type: "instructions",
			Content: []string{
				"",
				"INSTRUCTIONS:",
				"1. Identify the door type, glass style, hardware finish, and overall aesthetic from the inspiration photo",
				"2. Apply the same style, finishes, and design elements to the target bathroom",
				"3. Adapt the design to fit the target bathroom's specific layout and dimensions",
				"4. Maintain the lighting and ambiance of the target bathroom",
				"5. Ensure the result looks professionally installed and matches the inspiration's premium quality",
				"6. Only modify the shower enclosure in the target photo - preserve everything else",
				"",
				"The goal is to show the customer how the inspiration design would look in their actual bathroom.",
			},
		},
	},
	Variables: []Variable{
		{Name: "shower_shape", Type: VarString, Required: true, Description: "The detected shower shape of the target bathroom"},
	},
}

var systemTemplate = Template{
	ID:          "system-v1",
	Version:     "1.0.0",
	Name:        "System Prompt for Gemini",
	Type:        TypeSystem,
	Description: "System-level instructions for the AI model defining its role and constraints",
	Sections: []Section{
		{
			ID:   "role",
			Type: "header",
			Content: []string{
				"You are an AI image generation assistant for Gatsby Glass, a high-end shower glass company.",
				"Your task is to create photorealistic visualizations of custom shower glass installations.",
			},
		},
		{
			ID:   "requirements",
			Type: "instructions",
			Content: []string{
				"",
				"CRITICAL REQUIREMENTS:",
				"1. Generate images that look like professional architectural photography",
				"2. Match the lighting, perspective, and style of the input bathroom photo",
				"3. The shower glass must look crystal clear and premium quality",
				"4. Hardware (handles, hinges) must be accurately rendered in the specified finish",
				"5. The result should be indistinguishable from a real installation photo",
				"6. Maintain all architectural details of the original bathroom",
				"7. Only modify the shower enclosure area - everything else stays the same",
			},
		},
	},
}

var validationTemplate = Template{
	ID:          "validation-v1",
	Version:     "1.0.1",
	Name:        "Image Validation Prompt",
	Type:        TypeValidation,
	Description: "Prompt template for validating bathroom images and detecting shower shape",
	Sections: []Section{
		{
			ID:   "task",
			Type: "header",
			Content: []string{
				"Analyze this image to determine if it shows a bathroom or shower area where glass shower doors could be installed.",
			},
		},
		{
			ID:   "guidelines",
			Type: "instructions",
			Content: []string{
				"",
				"VALIDATION GUIDELINES - BE EXTREMELY LENIENT:",
				"",
				"ACCEPT (isValid: true) if you see ANY of these:",
				"- Shower area (with or without existing glass)",
				"- Bathtub or tub/shower combo",
				"- Bathroom tiles on walls or floor",
				"- Shower fixtures (shower head, faucets, handles)",
				"- Bathroom vanity, toilet, or sink visible",
				"- Walk-in shower with glass panel",
				"- Any space that looks like it could have a shower door installed",
				"- Gray tiles, pebble floors, built-in niches - these are shower features",
				"",
				"REJECT (isValid: false) ONLY if the image is clearly:",
				"- Outdoors or exterior",
				"- Kitchen, living room, bedroom, or other non-bathroom room",
				"- Not a residential/commercial interior space",
				"- Completely unrelated to bathrooms",
			},
		},
		{
			ID:   "shape_detection",
			Type: "specifications",
			Content: []string{
				"",
				"SHAPE DETECTION (if valid):",
				"Determine the shower layout:",
				"- 'standard': Most common - straight wall alcove, inline shower, walk-in shower, or 90-degree corner return",
				"- 'neo_angle': Corner shower with angled glass panels forming a diamond/pentagon shape (less common)",
				"- 'tub': Bathtub with or without existing shower fixtures",
			},
		},
		{
			ID:   "response_format",
			Type: "custom",
			Content: []string{
				"",
				"RESPONSE:",
				"Return JSON with isValid (boolean), reason (string, only if invalid), and shape (string).",
				"",
				"When in doubt, ACCEPT the image as valid.",
			},
		},
	},
}

// RegistryInfo describes the template registry: which template is active per
// type, and every registered template version.
type RegistryInfo struct {
	Version         string                     `json:"version"`
	UpdatedAt       string                     `json:"updatedAt"`
	ActiveTemplates map[TemplateType]string    `json:"activeTemplates"`
	Templates       map[string]RegisteredEntry `json:"templates"`
}

type RegisteredEntry struct {
	Version string `json:"version"`
	Active  bool   `json:"active"`
}

var templates = map[string]*Template{
	"visualization-v2": &visualizationTemplate,
	"inspiration-v1":   &inspirationTemplate,
	"system-v1":        &systemTemplate,
	"validation-v1":    &validationTemplate,
}

var activeTemplates = map[TemplateType]string{
	TypeVisualization: "visualization-v2",
	TypeInspiration:   "inspiration-v1",
	TypeSystem:        "system-v1",
	TypeValidation:    "validation-v1",
}

// ActiveTemplate returns the currently active template for a type. An
// unregistered type is a configuration error, never silently defaulted.
func ActiveTemplate(t TemplateType) (*Template, error) {
	id, ok := activeTemplates[t]
	if !ok {
		return nil, fmt.Errorf("no active template registered for type %q", t)
	}
	tpl, ok := templates[id]
	if !ok {
		return nil, fmt.Errorf("active template %q for type %q not found", id, t)
	}
	return tpl, nil
}

// TemplateByID returns a registered template by id.
func TemplateByID(id string) (*Template, error) {
	tpl, ok := templates[id]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", id)
	}
	return tpl, nil
}

// AllTemplates lists every registered template.
func AllTemplates() []*Template {
	out := make([]*Template, 0, len(templates))
	for _, id := range []string{"visualization-v2", "inspiration-v1", "system-v1", "validation-v1"} {
		out = append(out, templates[id])
	}
	return out
}

// Registry reports the registry contents.
func Registry() RegistryInfo {
	info := RegistryInfo{
		Version:         "1.0.0",
		UpdatedAt:       "2026-01-27T00:00:00Z",
		ActiveTemplates: make(map[TemplateType]string, len(activeTemplates)),
		Templates:       make(map[string]RegisteredEntry, len(templates)),
	}
	for t, id := range activeTemplates {
		info.ActiveTemplates[t] = id
	}
	for id, tpl := range templates {
		info.Templates[id] = RegisteredEntry{
			Version: tpl.Version,
			Active:  activeTemplates[tpl.Type] == id,
		}
	}
	return info
}
