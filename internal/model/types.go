package model

const (
	DefaultFramework     = "unknown"
	DefaultDomain        = "software"
	DefaultComponentType = "component"
	DefaultRelationKind  = "related_to"
)

// Canonical attribute keys. The adapter folds source-format synonyms into
// these so analyzers never branch on spelling.
const (
	AttrProvides = "provides"
	AttrRequires = "requires"
)

// Component is the structurally closed unit of an architecture: always a
// record with a name and a type, never a bare label string.
type Component struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Relationship is a directed edge. Source and target are architecture ids in
// graph-of-architectures shapes and component names in flat shapes; the gap
// matrix resolves them against both universes.
type Relationship struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight,omitempty"`
}

// Architecture is the normalized record every analyzer consumes.
// DeclaredLevel is set only when the source states an abstraction level
// explicitly; Raw carries unrecognized source fields for adapter
// compatibility and is never interpreted downstream.
type Architecture struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Framework     string         `json:"framework"`
	Domain        string         `json:"domain"`
	DeclaredLevel string         `json:"declared_level,omitempty"`
	Components    []Component    `json:"components"`
	Relationships []Relationship `json:"relationships,omitempty"`
	Raw           map[string]any `json:"raw,omitempty"`
}

// Pair identifies an unordered architecture pair in canonical (lexicographic)
// order. Direction-sensitive results name ids in their rationale instead of
// reordering the pair.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair returns the canonical pair for two architecture ids.
func NewPair(x, y string) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// StringList reads a component attribute that may arrive as a single string
// or a list of strings. Non-string elements are ignored.
func (c Component) StringList(key string) []string {
	if c.Attributes == nil {
		return nil
	}
	switch v := c.Attributes[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Provides returns the canonical provided-interface list.
func (c Component) Provides() []string { return c.StringList(AttrProvides) }

// Requires returns the canonical required-interface list.
func (c Component) Requires() []string { return c.StringList(AttrRequires) }
