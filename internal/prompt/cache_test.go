package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processedFor(t *testing.T, id string, vars map[string]any) ProcessedPrompt {
	t.Helper()
	return ProcessedPrompt{
		Text:     "prompt text",
		Template: TemplateRef{ID: id, Version: "1.0.0", Type: TypeVisualization},
		Hash:     HashVariables(vars),
	}
}

func TestCache_PutIdempotent(t *testing.T) {
	c := NewCache()
	vars := map[string]any{"glass_style": "clear"}

	first := c.Put(processedFor(t, "visualization-v2", vars), vars)
	second := c.Put(processedFor(t, "visualization-v2", vars), vars)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, first.UseCount)
	assert.Equal(t, 2, second.UseCount)
}

func TestCache_DifferentVariablesDifferentEntries(t *testing.T) {
	c := NewCache()
	a := map[string]any{"glass_style": "clear"}
	b := map[string]any{"glass_style": "low_iron"}

	first := c.Put(processedFor(t, "visualization-v2", a), a)
	second := c.Put(processedFor(t, "visualization-v2", b), b)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, c.All(), 2)
}

func TestCache_GetCountsUse(t *testing.T) {
	c := NewCache()
	vars := map[string]any{"k": "v"}
	stored := c.Put(processedFor(t, "visualization-v2", vars), vars)

	got, ok := c.Get("visualization-v2", stored.InputHash)
	require.True(t, ok)
	assert.Equal(t, 2, got.UseCount)

	_, ok = c.Get("visualization-v2", "nope")
	assert.False(t, ok)
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := NewCache()
	vars := map[string]any{"k": "v"}
	stored := c.Put(processedFor(t, "visualization-v2", vars), vars)

	stored.Variables["k"] = "mutated"
	stored.PromptText = "mutated"

	got, ok := c.Get("visualization-v2", stored.InputHash)
	require.True(t, ok)
	assert.Equal(t, "v", got.Variables["k"])
	assert.Equal(t, "prompt text", got.PromptText)
}

func TestCache_MostUsedAndRecent(t *testing.T) {
	c := NewCache()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	varsA := map[string]any{"n": "a"}
	varsB := map[string]any{"n": "b"}
	varsC := map[string]any{"n": "c"}

	a := c.Put(processedFor(t, "visualization-v2", varsA), varsA)
	b := c.Put(processedFor(t, "visualization-v2", varsB), varsB)
	c.Put(processedFor(t, "inspiration-v1", varsC), varsC)

	c.Get("visualization-v2", b.InputHash)
	c.Get("visualization-v2", b.InputHash)
	c.Get("visualization-v2", a.InputHash)

	mostUsed := c.MostUsed(2)
	require.Len(t, mostUsed, 2)
	assert.Equal(t, b.ID, mostUsed[0].ID)
	assert.Equal(t, a.ID, mostUsed[1].ID)

	recent := c.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, a.ID, recent[0].ID)
}

func TestCache_MostUsedTiesKeepInsertionOrder(t *testing.T) {
	c := NewCache()
	varsA := map[string]any{"n": "a"}
	varsB := map[string]any{"n": "b"}

	a := c.Put(processedFor(t, "visualization-v2", varsA), varsA)
	b := c.Put(processedFor(t, "visualization-v2", varsB), varsB)

	mostUsed := c.MostUsed(0)
	require.Len(t, mostUsed, 2)
	assert.Equal(t, a.ID, mostUsed[0].ID)
	assert.Equal(t, b.ID, mostUsed[1].ID)
}

func TestCache_ByType(t *testing.T) {
	c := NewCache()
	varsA := map[string]any{"n": "a"}
	varsB := map[string]any{"n": "b"}

	c.Put(processedFor(t, "visualization-v2", varsA), varsA)
	c.Put(processedFor(t, "inspiration-v1", varsB), varsB)

	vis := c.ByType(TypeVisualization)
	require.Len(t, vis, 1)
	assert.Equal(t, "visualization-v2", vis[0].TemplateID)
}

func TestCache_ClearOlderThan(t *testing.T) {
	c := NewCache()
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	varsOld := map[string]any{"n": "old"}
	varsNew := map[string]any{"n": "new"}

	old := c.Put(processedFor(t, "visualization-v2", varsOld), varsOld)
	current = current.Add(48 * time.Hour)
	fresh := c.Put(processedFor(t, "visualization-v2", varsNew), varsNew)

	cleared := c.ClearOlderThan(24 * time.Hour)

	assert.Equal(t, 1, cleared)
	_, ok := c.Get("visualization-v2", old.InputHash)
	assert.False(t, ok)
	_, ok = c.Get("visualization-v2", fresh.InputHash)
	assert.True(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := NewCache()
	varsA := map[string]any{"n": "a"}
	varsB := map[string]any{"n": "b"}

	a := c.Put(processedFor(t, "visualization-v2", varsA), varsA)
	c.Put(processedFor(t, "inspiration-v1", varsB), varsB)
	c.Get("visualization-v2", a.InputHash)

	stats := c.Stats()

	assert.Equal(t, 2, stats.TotalPrompts)
	assert.Equal(t, 3, stats.TotalUses)
	assert.Equal(t, 1, stats.ByType["visualization"])
	assert.Equal(t, 1, stats.ByType["inspiration"])
	require.NotNil(t, stats.OldestPrompt)
	require.NotNil(t, stats.NewestPrompt)
}

func TestCache_ExportImport(t *testing.T) {
	c := NewCache()
	varsA := map[string]any{"n": "a"}
	varsB := map[string]any{"n": "b"}

	c.Put(processedFor(t, "visualization-v2", varsA), varsA)
	c.Put(processedFor(t, "inspiration-v1", varsB), varsB)

	data, err := c.Export()
	require.NoError(t, err)

	fresh := NewCache()
	assert.Equal(t, 2, fresh.Import(data))
	assert.Len(t, fresh.All(), 2)

	// Import is additive: existing keys are kept, not overwritten.
	assert.Equal(t, 0, fresh.Import(data))

	// Malformed input reports zero, never panics.
	assert.Equal(t, 0, NewCache().Import([]byte("not json")))
}

func TestCache_RemoveAndClear(t *testing.T) {
	c := NewCache()
	vars := map[string]any{"n": "a"}
	stored := c.Put(processedFor(t, "visualization-v2", vars), vars)

	assert.True(t, c.Remove("visualization-v2", stored.InputHash))
	assert.False(t, c.Remove("visualization-v2", stored.InputHash))

	c.Put(processedFor(t, "visualization-v2", vars), vars)
	c.Clear()
	assert.Empty(t, c.All())
}
