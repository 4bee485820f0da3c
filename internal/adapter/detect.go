package adapter

import "strings"

// SourceFormat is the closed set of recognized input shapes. Detection never
// guesses per call site: one marker check in a fixed total order decides the
// conversion path for the whole document.
type SourceFormat string

const (
	FormatDeclared SourceFormat = "declared"
	FormatNodeEdge SourceFormat = "node_edge"
	FormatNodeLink SourceFormat = "node_link"
	FormatFlat     SourceFormat = "flat"
	FormatUnknown  SourceFormat = "unknown"
)

// Families a declared schema/format marker can name.
const (
	familyEcosystem = "ecosystem"
	familySoS       = "system_of_systems"
	familyFlat      = "architecture"
)

var markerKeys = []string{"schema", "schema_version", "format"}

// Detect inspects structural markers in priority order: explicit marker,
// nodes+edges, nodes+links, flat components/functions. First match wins.
func Detect(doc map[string]any) SourceFormat {
	if declaredFamily(doc) != "" {
		return FormatDeclared
	}
	if hasListField(doc, "nodes") {
		if hasListField(doc, "edges") {
			return FormatNodeEdge
		}
		if hasListField(doc, "links") {
			return FormatNodeLink
		}
	}
	if hasListField(doc, "components") || hasListField(doc, "functions") {
		return FormatFlat
	}
	return FormatUnknown
}

// declaredFamily returns the format family named by an explicit marker, or ""
// when no marker names a recognized family.
func declaredFamily(doc map[string]any) string {
	for _, key := range markerKeys {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		marker, ok := raw.(string)
		if !ok {
			continue
		}
		marker = strings.ToLower(strings.TrimSpace(marker))
		switch {
		case strings.Contains(marker, "system_of_systems"), strings.Contains(marker, "system-of-systems"), marker == "sos":
			return familySoS
		case strings.Contains(marker, "ecosystem"):
			return familyEcosystem
		case strings.Contains(marker, "architecture"), strings.Contains(marker, "decision"):
			return familyFlat
		}
	}
	return ""
}

func hasListField(doc map[string]any, key string) bool {
	v, ok := doc[key]
	if !ok {
		return false
	}
	_, isList := v.([]any)
	return isList
}
