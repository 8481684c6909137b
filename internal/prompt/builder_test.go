package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatsby-glass-visualizer/internal/catalog"
)

func newTestEngine() *Engine {
	return New(Options{
		Catalog:          catalog.ForPrompt(),
		Cache:            NewCache(),
		StrictValidation: true,
	})
}

func slidingConfig() VisualizationConfig {
	return VisualizationConfig{
		ShowerShape:     "standard",
		EnclosureType:   "sliding",
		GlassStyle:      "clear",
		HardwareFinish:  "matte_black",
		HandleStyle:     "ladder",
		TrackPreference: "frameless",
		Sliding: &SlidingOptions{
			Configuration: "double_door",
			Direction:     "sliding_left",
		},
	}
}

func TestBuildVisualizationPrompt_SlidingSectionsOnly(t *testing.T) {
	e := newTestEngine()

	out, err := e.BuildVisualizationPrompt(slidingConfig())
	require.NoError(t, err)

	assert.Contains(t, out.Text, "=== SLIDING DOOR CONFIGURATION ===")
	assert.Contains(t, out.Text, "double door")
	assert.Contains(t, out.Text, "sliding left")
	assert.NotContains(t, out.Text, "=== HINGED DOOR CONFIGURATION ===")
	assert.NotContains(t, out.Text, "=== PIVOT DOOR CONFIGURATION ===")
}

func TestBuildVisualizationPrompt_ResolvesCatalogNames(t *testing.T) {
	e := newTestEngine()

	out, err := e.BuildVisualizationPrompt(slidingConfig())
	require.NoError(t, err)

	assert.Contains(t, out.Text, "=== DOOR TYPE: Sliding Door ===")
	assert.Contains(t, out.Text, "=== GLASS STYLE: Clear Glass ===")
	assert.Contains(t, out.Text, "=== HARDWARE FINISH: Matte Black ===")
	assert.Contains(t, out.Text, "Space-saving sliding door system")
	assert.Contains(t, out.Text, "Clean frameless design with minimal hardware")
}

func TestBuildVisualizationPrompt_NoPlaceholderLeaks(t *testing.T) {
	e := newTestEngine()

	out, err := e.BuildVisualizationPrompt(slidingConfig())
	require.NoError(t, err)

	assert.NotContains(t, out.Text, "{{")
	assert.Empty(t, out.Warnings)
}

func TestBuildVisualizationPrompt_HingedToCeiling(t *testing.T) {
	e := newTestEngine()
	cfg := VisualizationConfig{
		ShowerShape:     "standard",
		EnclosureType:   "hinged",
		GlassStyle:      "clear",
		HardwareFinish:  "chrome",
		HandleStyle:     "knob",
		TrackPreference: "framed",
		Hinged:          &HingedOptions{ToCeiling: true, Direction: "swing_right"},
	}

	out, err := e.BuildVisualizationPrompt(cfg)
	require.NoError(t, err)

	assert.Contains(t, out.Text, "Extends to ceiling: Yes")
	assert.Contains(t, out.Text, "Swing direction: swing right")

	cfg.Hinged.ToCeiling = false
	out, err = e.BuildVisualizationPrompt(cfg)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Extends to ceiling: No")
}

func TestBuildVisualizationPrompt_CachesResult(t *testing.T) {
	e := newTestEngine()
	cfg := slidingConfig()

	first, err := e.BuildVisualizationPrompt(cfg)
	require.NoError(t, err)
	_, err = e.BuildVisualizationPrompt(cfg)
	require.NoError(t, err)

	stored, ok := e.Cache().Get("visualization-v2", first.Hash)
	require.True(t, ok)
	assert.Equal(t, 3, stored.UseCount) // two builds plus this lookup
}

func TestBuildInspirationPrompt(t *testing.T) {
	e := newTestEngine()

	out, err := e.BuildInspirationPrompt("neo_angle")
	require.NoError(t, err)

	assert.Contains(t, out.Text, "TARGET SHOWER TYPE: neo_angle")
	assert.Equal(t, "inspiration-v1", out.Template.ID)
	assert.NotContains(t, out.Text, "{{")
}

func TestSystemAndValidationPrompts(t *testing.T) {
	e := newTestEngine()

	sys, err := e.SystemPrompt()
	require.NoError(t, err)
	assert.Contains(t, sys.Text, "Gatsby Glass")

	val, err := e.ValidationPrompt()
	require.NoError(t, err)
	assert.Contains(t, val.Text, "BE EXTREMELY LENIENT")
	assert.Contains(t, val.Text, "neo_angle")
}

func TestActiveTemplate_AllTypesRegistered(t *testing.T) {
	for _, typ := range []TemplateType{TypeVisualization, TypeInspiration, TypeSystem, TypeValidation} {
		tpl, err := ActiveTemplate(typ)
		require.NoError(t, err, string(typ))
		assert.Equal(t, typ, tpl.Type)
	}

	_, err := ActiveTemplate(TemplateType("bogus"))
	assert.Error(t, err)
}

func TestTemplateByID(t *testing.T) {
	tpl, err := TemplateByID("visualization-v2")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", tpl.Version)

	_, err = TemplateByID("visualization-v99")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	info := Registry()

	assert.Len(t, info.Templates, 4)
	assert.Equal(t, "visualization-v2", info.ActiveTemplates[TypeVisualization])
	assert.True(t, info.Templates["visualization-v2"].Active)

	var total int
	for _, tpl := range AllTemplates() {
		require.NotEmpty(t, tpl.ID)
		total++
	}
	assert.Equal(t, 4, total)
}

func TestVisualizationTemplate_SectionsShareOneGate(t *testing.T) {
	tpl, err := ActiveTemplate(TypeVisualization)
	require.NoError(t, err)

	gated := 0
	for _, sec := range tpl.Sections {
		if sec.Condition != nil {
			gated++
			assert.Equal(t, "enclosure_type", sec.Condition.Variable)
			assert.Equal(t, OpEquals, sec.Condition.Operator)
		}
	}
	assert.Equal(t, 3, gated)
}

func TestDescribe(t *testing.T) {
	cfg := slidingConfig()
	parts := strings.Split(cfg.Describe(), "/")
	assert.Equal(t, []string{"standard", "sliding", "clear", "matte_black"}, parts)
}
