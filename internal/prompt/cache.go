package prompt

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoredPrompt is one cache entry. UseCount and LastUsedAt are bumped on
// every hit; everything else is fixed at creation.
type StoredPrompt struct {
	ID              string         `json:"id"`
	TemplateID      string         `json:"templateId"`
	TemplateVersion string         `json:"templateVersion"`
	InputHash       string         `json:"inputHash"`
	Variables       map[string]any `json:"variables"`
	PromptText      string         `json:"promptText"`
	GeneratedAt     time.Time      `json:"generatedAt"`
	UseCount        int            `json:"useCount"`
	LastUsedAt      time.Time      `json:"lastUsedAt"`
}

// Cache deduplicates generated prompts by (template id, input hash) and
// tracks reuse. In-memory, process-lifetime, safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*StoredPrompt
	order   []string // insertion order, for stable tie-breaks
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*StoredPrompt),
		now:     time.Now,
	}
}

func cacheKey(templateID, inputHash string) string {
	return templateID + ":" + inputHash
}

// Put stores a processed prompt. If an entry already exists for the same
// template and input hash it is reused: use count incremented, last-used
// refreshed. The returned value is a snapshot copy either way.
func (c *Cache) Put(processed ProcessedPrompt, variables map[string]any) StoredPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(processed.Template.ID, processed.Hash)
	if existing, ok := c.entries[key]; ok {
		existing.UseCount++
		existing.LastUsedAt = c.now()
		return copyEntry(existing)
	}

	now := c.now()
	vars := make(map[string]any, len(variables))
	for k, v := range variables {
		vars[k] = v
	}

	stored := &StoredPrompt{
		ID:              "prompt_" + uuid.NewString(),
		TemplateID:      processed.Template.ID,
		TemplateVersion: processed.Template.Version,
		InputHash:       processed.Hash,
		Variables:       vars,
		PromptText:      processed.Text,
		GeneratedAt:     now,
		UseCount:        1,
		LastUsedAt:      now,
	}
	c.entries[key] = stored
	c.order = append(c.order, key)
	return copyEntry(stored)
}

// Get returns the cached prompt for (templateID, inputHash) and counts the
// lookup as a use. A miss returns false with no side effects.
func (c *Cache) Get(templateID, inputHash string) (StoredPrompt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(templateID, inputHash)]
	if !ok {
		return StoredPrompt{}, false
	}
	entry.UseCount++
	entry.LastUsedAt = c.now()
	return copyEntry(entry), true
}

// All returns every entry in insertion order.
func (c *Cache) All() []StoredPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// ByType returns entries whose template id starts with the given type
// prefix (template ids embed their type, e.g. "visualization-v2").
func (c *Cache) ByType(t TemplateType) []StoredPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []StoredPrompt
	for _, key := range c.order {
		if entry, ok := c.entries[key]; ok && strings.HasPrefix(entry.TemplateID, string(t)) {
			out = append(out, copyEntry(entry))
		}
	}
	return out
}

// MostUsed returns up to limit entries ordered by descending use count,
// ties broken by insertion order.
func (c *Cache) MostUsed(limit int) []StoredPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.snapshotLocked()
	sort.SliceStable(out, func(i, j int) bool { return out[i].UseCount > out[j].UseCount })
	return clip(out, limit)
}

// Recent returns up to limit entries ordered by most recent use.
func (c *Cache) Recent(limit int) []StoredPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.snapshotLocked()
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastUsedAt.After(out[j].LastUsedAt) })
	return clip(out, limit)
}

// Remove deletes a single entry; reports whether it existed.
func (c *Cache) Remove(templateID, inputHash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(templateID, inputHash)
	if _, ok := c.entries[key]; !ok {
		return false
	}
	c.deleteLocked(key)
	return true
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*StoredPrompt)
	c.order = nil
}

// ClearOlderThan removes entries not used within maxAge and returns how
// many were removed.
func (c *Cache) ClearOlderThan(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cleared := 0
	for _, key := range append([]string(nil), c.order...) {
		entry, ok := c.entries[key]
		if !ok {
			continue
		}
		if now.Sub(entry.LastUsedAt) > maxAge {
			c.deleteLocked(key)
			cleared++
		}
	}
	return cleared
}

// Stats summarizes the cache contents.
type Stats struct {
	TotalPrompts int            `json:"totalPrompts"`
	TotalUses    int            `json:"totalUses"`
	ByType       map[string]int `json:"byType"`
	OldestPrompt *time.Time     `json:"oldestPrompt"`
	NewestPrompt *time.Time     `json:"newestPrompt"`
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{ByType: make(map[string]int)}
	for _, key := range c.order {
		entry, ok := c.entries[key]
		if !ok {
			continue
		}
		stats.TotalPrompts++
		stats.TotalUses += entry.UseCount

		typeName, _, _ := strings.Cut(entry.TemplateID, "-")
		stats.ByType[typeName]++

		if stats.OldestPrompt == nil || entry.GeneratedAt.Before(*stats.OldestPrompt) {
			t := entry.GeneratedAt
			stats.OldestPrompt = &t
		}
		if stats.NewestPrompt == nil || entry.GeneratedAt.After(*stats.NewestPrompt) {
			t := entry.GeneratedAt
			stats.NewestPrompt = &t
		}
	}
	return stats
}

// Export serializes every entry to a JSON array for persistence.
func (c *Cache) Export() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return json.MarshalIndent(c.snapshotLocked(), "", "  ")
}

// Import adds entries from a JSON array produced by Export. Keys already
// present are skipped, never overwritten. Malformed JSON is reported as
// zero imported, not an error.
func (c *Cache) Import(data []byte) int {
	var prompts []StoredPrompt
	if err := json.Unmarshal(data, &prompts); err != nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	imported := 0
	for i := range prompts {
		key := cacheKey(prompts[i].TemplateID, prompts[i].InputHash)
		if _, ok := c.entries[key]; ok {
			continue
		}
		entry := prompts[i]
		c.entries[key] = &entry
		c.order = append(c.order, key)
		imported++
	}
	return imported
}

func (c *Cache) snapshotLocked() []StoredPrompt {
	out := make([]StoredPrompt, 0, len(c.entries))
	for _, key := range c.order {
		if entry, ok := c.entries[key]; ok {
			out = append(out, copyEntry(entry))
		}
	}
	return out
}

func (c *Cache) deleteLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func copyEntry(entry *StoredPrompt) StoredPrompt {
	cp := *entry
	cp.Variables = make(map[string]any, len(entry.Variables))
	for k, v := range entry.Variables {
		cp.Variables[k] = v
	}
	return cp
}

func clip(list []StoredPrompt, limit int) []StoredPrompt {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
