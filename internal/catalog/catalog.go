package catalog

// Version identifies the product data snapshot carried in generated payloads.
const Version = "2025.10"

type Entry struct {
	Key         string
	Name        string
	Description string
}

var glassStyles = map[string]Entry{
	"clear": {
		Key:         "clear",
		Name:        "Clear Glass",
		Description: "Standard clear tempered glass with subtle greenish tint",
	},
	"low_iron": {
		Key:         "low_iron",
		Name:        "Low Iron",
		Description: "Ultra-clear glass with minimal color tint for maximum clarity",
	},
	"p516": {
		Key:         "p516",
		Name:        "P516 Pattern",
		Description: "Textured glass with P516 pattern for privacy",
	},
}

var hardwareFinishes = map[string]Entry{
	"chrome": {
		Key:         "chrome",
		Name:        "Polished Chrome",
		Description: "Mirror-like chrome finish with high reflectivity",
	},
	"brushed_nickel": {
		Key:         "brushed_nickel",
		Name:        "Brushed Nickel",
		Description: "Soft satin nickel with brushed texture",
	},
	"matte_black": {
		Key:         "matte_black",
		Name:        "Matte Black",
		Description: "Modern flat black finish",
	},
	"polished_brass": {
		Key:         "polished_brass",
		Name:        "Polished Brass",
		Description: "Luxurious gold-toned brass finish",
	},
	"oil_rubbed_bronze": {
		Key:         "oil_rubbed_bronze",
		Name:        "Oil Rubbed Bronze",
		Description: "Rich bronze with oil-rubbed patina",
	},
}

var enclosureTypes = map[string]Entry{
	"hinged": {
		Key:         "hinged",
		Name:        "Hinged Door",
		Description: "Traditional hinged door that swings open",
	},
	"pivot": {
		Key:         "pivot",
		Name:        "Pivot Door",
		Description: "Center-pivot door with modern aesthetic",
	},
	"sliding": {
		Key:         "sliding",
		Name:        "Sliding Door",
		Description: "Space-saving sliding door system",
	},
}

var handleStyles = map[string]Entry{
	"ladder": {
		Key:         "ladder",
		Name:        "Ladder Pull",
		Description: "Vertical ladder-style pull handle",
	},
	"square": {
		Key:         "square",
		Name:        "Square Pull",
		Description: "Modern square profile pull",
	},
	"d_pull": {
		Key:         "d_pull",
		Name:        "Crescent (D) Pull",
		Description: "D-shaped crescent pull handle",
	},
	"knob": {
		Key:         "knob",
		Name:        "Knob",
		Description: "Classic round knob handle",
	},
}

var trackPreferences = map[string]Entry{
	"frameless": {
		Key:         "frameless",
		Name:        "Frameless",
		Description: "Clean frameless design with minimal hardware",
	},
	"semi_frameless": {
		Key:         "semi_frameless",
		Name:        "Semi-Frameless",
		Description: "Partial framing for added stability",
	},
	"framed": {
		Key:         "framed",
		Name:        "Framed",
		Description: "Full frame around glass panels",
	},
}

var glassStyleOrder = []string{"clear", "low_iron", "p516"}
var hardwareFinishOrder = []string{"chrome", "brushed_nickel", "matte_black", "polished_brass", "oil_rubbed_bronze"}
var enclosureTypeOrder = []string{"hinged", "pivot", "sliding"}
var handleStyleOrder = []string{"ladder", "square", "d_pull", "knob"}
var trackPreferenceOrder = []string{"frameless", "semi_frameless", "framed"}

func ordered(order []string, m map[string]Entry) []Entry {
	out := make([]Entry, 0, len(order))
	for _, key := range order {
		if e, ok := m[key]; ok {
			out = append(out, e)
		}
	}
	return out
}

func GlassStyles() []Entry      { return ordered(glassStyleOrder, glassStyles) }
func HardwareFinishes() []Entry { return ordered(hardwareFinishOrder, hardwareFinishes) }
func EnclosureTypes() []Entry   { return ordered(enclosureTypeOrder, enclosureTypes) }
func HandleStyles() []Entry     { return ordered(handleStyleOrder, handleStyles) }
func TrackPreferences() []Entry { return ordered(trackPreferenceOrder, trackPreferences) }

// Lookup finds an entry in the named catalog. The catalog names match the
// keys produced by ForPrompt.
func Lookup(catalogName, key string) (Entry, bool) {
	m, ok := catalogs()[catalogName]
	if !ok {
		return Entry{}, false
	}
	e, ok := m[key]
	return e, ok
}

func catalogs() map[string]map[string]Entry {
	return map[string]map[string]Entry{
		"glassStyles":      glassStyles,
		"hardwareFinishes": hardwareFinishes,
		"enclosureTypes":   enclosureTypes,
		"handleStyles":     handleStyles,
		"trackPreferences": trackPreferences,
	}
}

// ForPrompt returns the full catalog in the shape the template engine
// consumes: catalog name -> option key -> entry. The returned maps are
// fresh copies so callers cannot mutate the package data.
func ForPrompt() map[string]map[string]Entry {
	out := make(map[string]map[string]Entry, 5)
	for name, m := range catalogs() {
		cp := make(map[string]Entry, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}

// Compatibility maps a detected shower shape to the enclosure types that can
// physically be installed in it. Neo-angle (corner, multi-panel) geometry
// only accepts hinged doors.
func Compatibility() map[string][]string {
	return map[string][]string{
		"standard":  {"hinged", "pivot", "sliding"},
		"neo_angle": {"hinged"},
		"tub":       {"hinged", "pivot", "sliding"},
	}
}
