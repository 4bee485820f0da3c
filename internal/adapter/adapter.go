package adapter

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"archlens/internal/model"
)

// FormatError is the only fatal adapter outcome: unparseable bytes or a root
// value that is neither an object nor an array. Everything else degrades.
type FormatError struct {
	Path     string
	Reason   string
	Expected []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s (expected one of: %s)", e.Path, e.Reason, strings.Join(e.Expected, ", "))
}

func newFormatError(path, reason string) *FormatError {
	return &FormatError{
		Path:   path,
		Reason: reason,
		Expected: []string{
			"schema-declared document",
			"nodes+edges graph",
			"nodes+links graph",
			"flat components list",
		},
	}
}

// NormalizeBytes parses raw JSON and normalizes it.
func NormalizeBytes(raw []byte, source string) ([]model.Architecture, []model.Warning, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, newFormatError(source, fmt.Sprintf("invalid JSON: %v", err))
	}
	return Normalize(doc, source)
}

// Normalize converts one parsed JSON document into canonical Architecture
// records. Total on object and array roots: unrecognized object shapes
// degrade to an empty-components record with a warning, never an error.
func Normalize(doc any, source string) ([]model.Architecture, []model.Warning, error) {
	switch v := doc.(type) {
	case map[string]any:
		archs, warns := normalizeObject(v, source)
		return archs, warns, nil
	case []any:
		var archs []model.Architecture
		var warns []model.Warning
		for i, el := range v {
			elSource := fmt.Sprintf("%s[%d]", source, i)
			obj, ok := el.(map[string]any)
			if !ok {
				warns = appendWarning(warns, "element_skipped", elSource, model.SeverityWarning,
					"array element is not an object and cannot describe an architecture")
				continue
			}
			a, w := normalizeObject(obj, elSource)
			archs = append(archs, a...)
			warns = append(warns, w...)
		}
		return archs, warns, nil
	default:
		return nil, nil, newFormatError(source, fmt.Sprintf("root is %s, not an object or array", jsonTypeName(doc)))
	}
}

func normalizeObject(doc map[string]any, source string) ([]model.Architecture, []model.Warning) {
	switch Detect(doc) {
	case FormatDeclared:
		return convertDeclared(doc, source)
	case FormatNodeEdge:
		return convertGraph(doc, source, "edges", "")
	case FormatNodeLink:
		return convertGraph(doc, source, "links", "")
	case FormatFlat:
		arch, warns := convertFlat(doc, source)
		return []model.Architecture{arch}, warns
	default:
		return degrade(doc, source)
	}
}

func convertDeclared(doc map[string]any, source string) ([]model.Architecture, []model.Warning) {
	family := declaredFamily(doc)
	switch family {
	case familyEcosystem, familySoS:
		edgeKey := "edges"
		if !hasListField(doc, edgeKey) && hasListField(doc, "links") {
			edgeKey = "links"
		}
		if hasListField(doc, "nodes") {
			return convertGraph(doc, source, edgeKey, family)
		}
		return degrade(doc, source)
	default:
		arch, warns := convertFlat(doc, source)
		return []model.Architecture{arch}, warns
	}
}

// convertGraph maps a graph-of-architectures document: each node becomes one
// Architecture, each edge an inter-architecture Relationship. Edges ride on
// the architecture matching their source id; dangling sources ride on the
// first record so the gap matrix can still judge them.
func convertGraph(doc map[string]any, source, edgeKey, family string) ([]model.Architecture, []model.Warning) {
	var warns []model.Warning
	nodes, _ := doc["nodes"].([]any)

	archs := make([]model.Architecture, 0, len(nodes))
	for i, rawNode := range nodes {
		nodeSource := fmt.Sprintf("%s/nodes[%d]", source, i)
		switch node := rawNode.(type) {
		case map[string]any:
			a, w := convertNode(node, nodeSource, i, source, family)
			archs = append(archs, a)
			warns = append(warns, w...)
		case string:
			label := strings.TrimSpace(node)
			if label == "" {
				warns = appendWarning(warns, "node_skipped", nodeSource, model.SeverityWarning, "empty node label")
				continue
			}
			archs = append(archs, model.Architecture{
				ID:         label,
				Name:       label,
				Framework:  model.DefaultFramework,
				Domain:     model.DefaultDomain,
				Components: []model.Component{},
			})
			warns = appendWarning(warns, "bare_node_lifted", nodeSource, model.SeverityInfo,
				"bare string node lifted into an architecture record")
		default:
			warns = appendWarning(warns, "node_skipped", nodeSource, model.SeverityWarning,
				fmt.Sprintf("node is %s, not an object or label", jsonTypeName(rawNode)))
		}
	}

	if len(archs) == 0 {
		warns = appendWarning(warns, "empty_graph", source, model.SeverityWarning, "graph document contains no usable nodes")
		return nil, warns
	}

	edges, _ := doc[edgeKey].([]any)
	for i, rawEdge := range edges {
		edgeSource := fmt.Sprintf("%s/%s[%d]", source, edgeKey, i)
		edge, ok := rawEdge.(map[string]any)
		if !ok {
			warns = appendWarning(warns, "edge_dropped", edgeSource, model.SeverityWarning, "edge is not an object")
			continue
		}
		rel, ok := convertRelationship(edge)
		if !ok {
			warns = appendWarning(warns, "edge_dropped", edgeSource, model.SeverityWarning, "edge is missing a source or target")
			continue
		}
		carrier := 0
		for j := range archs {
			if archs[j].ID == rel.Source {
				carrier = j
				break
			}
		}
		archs[carrier].Relationships = append(archs[carrier].Relationships, rel)
	}

	return archs, warns
}

// convertNode maps one graph node into an Architecture.
func convertNode(node map[string]any, nodeSource string, index int, docSource, family string) (model.Architecture, []model.Warning) {
	used := make(map[string]bool)

	id := firstString(node, used, "id", "node_id")
	name := firstString(node, used, "name", "node_name", "label")
	if id == "" {
		id = name
	}
	if id == "" {
		id = fmt.Sprintf("%s#%d", baseName(docSource), index)
	}
	if name == "" {
		name = id
	}

	arch := model.Architecture{
		ID:          id,
		Name:        name,
		Description: firstString(node, used, "description", "desc", "summary"),
		Framework:   defaulted(firstString(node, used, "framework", "methodology"), model.DefaultFramework),
		Domain:      defaulted(firstString(node, used, "domain", "field", "category"), model.DefaultDomain),
	}

	var warns []model.Warning
	arch.Components, warns = componentsOf(node, used, nodeSource)

	arch.DeclaredLevel = levelFromString(firstString(node, used, "level", "abstraction_level", "scope"))
	if arch.DeclaredLevel == "" && family == familySoS {
		// Members of a declared system-of-systems are systems unless they
		// say otherwise.
		arch.DeclaredLevel = "system"
	}

	arch.Raw = leftoverRaw(node, used)
	return arch, warns
}

// convertFlat maps a direct architecture dump into a single Architecture.
func convertFlat(doc map[string]any, source string) (model.Architecture, []model.Warning) {
	used := make(map[string]bool)
	for _, key := range markerKeys {
		used[key] = true
	}

	id := firstString(doc, used, "id", "architecture_id")
	name := firstString(doc, used, "name", "title")
	if id == "" {
		id = name
	}
	if id == "" {
		id = baseName(source)
	}
	if name == "" {
		name = id
	}

	arch := model.Architecture{
		ID:          id,
		Name:        name,
		Description: firstString(doc, used, "description", "desc", "summary"),
		Framework:   defaulted(firstString(doc, used, "framework", "methodology"), model.DefaultFramework),
		Domain:      defaulted(firstString(doc, used, "domain", "field", "category"), model.DefaultDomain),
	}
	arch.DeclaredLevel = levelFromString(firstString(doc, used, "level", "abstraction_level", "scope"))

	var warns []model.Warning
	arch.Components, warns = componentsOf(doc, used, source)

	for _, key := range []string{"relationships", "connections"} {
		list, ok := doc[key].([]any)
		if !ok {
			continue
		}
		used[key] = true
		for i, rawEdge := range list {
			edgeSource := fmt.Sprintf("%s/%s[%d]", source, key, i)
			edge, ok := rawEdge.(map[string]any)
			if !ok {
				warns = appendWarning(warns, "edge_dropped", edgeSource, model.SeverityWarning, "relationship is not an object")
				continue
			}
			rel, ok := convertRelationship(edge)
			if !ok {
				warns = appendWarning(warns, "edge_dropped", edgeSource, model.SeverityWarning, "relationship is missing a source or target")
				continue
			}
			arch.Relationships = append(arch.Relationships, rel)
		}
	}

	arch.Raw = leftoverRaw(doc, used)
	return arch, warns
}

// degrade produces the best-effort record for a well-formed object of an
// unrecognized shape.
func degrade(doc map[string]any, source string) ([]model.Architecture, []model.Warning) {
	used := make(map[string]bool)
	id := firstString(doc, used, "id", "name")
	if id == "" {
		id = baseName(source)
	}
	arch := model.Architecture{
		ID:         id,
		Name:       defaulted(firstString(doc, used, "name", "title"), id),
		Framework:  model.DefaultFramework,
		Domain:     model.DefaultDomain,
		Components: []model.Component{},
		Raw:        leftoverRaw(doc, map[string]bool{}),
	}
	warn := model.NewWarning("unrecognized_shape", source, model.SeverityWarning,
		"document matched no recognized shape; emitted an empty-components record", 0)
	return []model.Architecture{arch}, []model.Warning{warn}
}

// componentsOf resolves the component list of a node or flat document,
// applying the lifting rule: a capabilities list of bare labels becomes
// structured capability components, never pass-through strings.
func componentsOf(container map[string]any, used map[string]bool, source string) ([]model.Component, []model.Warning) {
	var warns []model.Warning

	for _, key := range []string{"components", "functions"} {
		list, ok := container[key].([]any)
		if !ok {
			continue
		}
		used[key] = true
		comps := make([]model.Component, 0, len(list))
		for i, entry := range list {
			entrySource := fmt.Sprintf("%s/%s[%d]", source, key, i)
			switch rec := entry.(type) {
			case map[string]any:
				c, ok := convertComponentRecord(rec)
				if !ok {
					warns = appendWarning(warns, "component_skipped", entrySource, model.SeverityWarning,
						"component record has no usable name")
					continue
				}
				comps = append(comps, c)
			case string:
				label := strings.TrimSpace(rec)
				if label == "" {
					warns = appendWarning(warns, "component_skipped", entrySource, model.SeverityWarning, "empty component label")
					continue
				}
				comps = append(comps, model.Component{Name: label, Type: model.DefaultComponentType})
				warns = appendWarning(warns, "component_lifted", entrySource, model.SeverityInfo,
					"bare string in component list lifted into a structured component")
			default:
				warns = appendWarning(warns, "component_skipped", entrySource, model.SeverityWarning,
					fmt.Sprintf("component is %s, not an object or label", jsonTypeName(entry)))
			}
		}
		return comps, warns
	}

	list, ok := container["capabilities"].([]any)
	if !ok {
		return []model.Component{}, warns
	}
	used["capabilities"] = true
	comps := make([]model.Component, 0, len(list))
	for i, entry := range list {
		entrySource := fmt.Sprintf("%s/capabilities[%d]", source, i)
		switch rec := entry.(type) {
		case string:
			label := strings.TrimSpace(rec)
			if label == "" {
				warns = appendWarning(warns, "component_skipped", entrySource, model.SeverityWarning, "empty capability label")
				continue
			}
			comps = append(comps, model.Component{Name: label, Type: "capability"})
		case map[string]any:
			c, ok := convertComponentRecord(rec)
			if !ok {
				warns = appendWarning(warns, "component_skipped", entrySource, model.SeverityWarning,
					"capability record has no usable name")
				continue
			}
			if c.Type == model.DefaultComponentType {
				c.Type = "capability"
			}
			comps = append(comps, c)
		default:
			warns = appendWarning(warns, "component_skipped", entrySource, model.SeverityWarning,
				fmt.Sprintf("capability is %s, not a label or object", jsonTypeName(entry)))
		}
	}
	return comps, warns
}

// convertComponentRecord validates the name, resolves synonyms, and folds
// interface declarations into the canonical attribute keys.
func convertComponentRecord(rec map[string]any) (model.Component, bool) {
	used := make(map[string]bool)
	name := firstString(rec, used, "name", "node_name", "label", "id")
	if name == "" {
		return model.Component{}, false
	}

	c := model.Component{
		Name: name,
		Type: defaulted(firstString(rec, used, "type", "kind"), model.DefaultComponentType),
	}

	provides := collectStrings(rec, used, "provides", "provided_interfaces")
	requires := collectStrings(rec, used, "requires", "required_interfaces", "needs")

	attrs := leftoverRaw(rec, used)
	if attrs == nil && (len(provides) > 0 || len(requires) > 0) {
		attrs = make(map[string]any)
	}
	if len(provides) > 0 {
		attrs[model.AttrProvides] = provides
	}
	if len(requires) > 0 {
		attrs[model.AttrRequires] = requires
	}
	c.Attributes = attrs
	return c, true
}

func convertRelationship(edge map[string]any) (model.Relationship, bool) {
	used := make(map[string]bool)
	rel := model.Relationship{
		Source: firstString(edge, used, "source", "from", "src"),
		Target: firstString(edge, used, "target", "to", "dst"),
		Kind:   defaulted(firstString(edge, used, "type", "kind", "relationship"), model.DefaultRelationKind),
		Weight: firstFloat(edge, "weight", "strength"),
	}
	if rel.Source == "" || rel.Target == "" {
		return model.Relationship{}, false
	}
	return rel, true
}

// levelFromString maps a declared abstraction level onto the closed level
// vocabulary; unrecognized values yield "" (nothing declared).
func levelFromString(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "system_of_systems"), strings.Contains(s, "system-of-systems"), s == "sos":
		return "system_of_systems"
	case strings.Contains(s, "component"), strings.Contains(s, "module"):
		return "component"
	case strings.Contains(s, "system"), strings.Contains(s, "platform"):
		return "system"
	default:
		return ""
	}
}

func firstString(m map[string]any, used map[string]bool, keys ...string) string {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		used[key] = true
		if s, ok := raw.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func firstFloat(m map[string]any, keys ...string) float64 {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return 0
}

// collectStrings merges string or string-list values across synonym keys,
// preserving appearance order and dropping duplicates.
func collectStrings(m map[string]any, used map[string]bool, keys ...string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		used[key] = true
		switch v := raw.(type) {
		case string:
			add(v)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
	}
	return out
}

func leftoverRaw(m map[string]any, used map[string]bool) map[string]any {
	var out map[string]any
	for k, v := range m {
		if used[k] {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

func appendWarning(warns []model.Warning, code, source, severity, message string) []model.Warning {
	w := model.NewWarning(code, source, severity, message, 0)
	if w.Code == "" {
		return warns
	}
	return append(warns, w)
}

func defaulted(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func baseName(source string) string {
	base := filepath.Base(strings.TrimSpace(source))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "input"
	}
	return base
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return "an unsupported value"
	}
}
