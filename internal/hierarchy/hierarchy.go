// Package hierarchy classifies architectures by abstraction level and
// derives peer groups and missing parent levels across a run.
package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"archlens/internal/model"
)

// Abstraction levels, ordered from narrowest to widest.
const (
	LevelComponent       = "component"
	LevelSystem          = "system"
	LevelSystemOfSystems = "system_of_systems"
	LevelUnknown         = "unknown"
)

const (
	// minLevelScore is the floor below which a classification degrades to
	// LevelUnknown.
	minLevelScore = 0.3
	// maxConfidence caps every classification; the heuristic never claims
	// certainty.
	maxConfidence = 0.9
)

// scoredLevels is the candidate order; earlier entries win ties so ambiguous
// architectures land on the narrower level.
var scoredLevels = []string{LevelComponent, LevelSystem, LevelSystemOfSystems}

// Band is an inclusive component-count range. Max of zero leaves the band
// open-ended above.
type Band struct {
	Min int
	Max int
}

func (b Band) contains(n int) bool {
	return n >= b.Min && (b.Max == 0 || n <= b.Max)
}

// Profile carries the immutable scoring tables: per-level component-count
// bands and keyword lists for names and descriptions.
type Profile struct {
	Bands               map[string]Band
	NameKeywords        map[string][]string
	DescriptionKeywords map[string][]string
}

// DefaultProfile returns the built-in scoring tables.
func DefaultProfile() Profile {
	return Profile{
		Bands: map[string]Band{
			LevelComponent:       {Min: 1, Max: 15},
			LevelSystem:          {Min: 8, Max: 80},
			LevelSystemOfSystems: {Min: 30},
		},
		NameKeywords: map[string][]string{
			LevelComponent:       {"component", "module", "library", "widget", "primitive"},
			LevelSystem:          {"system", "platform", "application", "pipeline", "engine"},
			LevelSystemOfSystems: {"ecosystem", "enterprise", "federation", "fleet", "system of systems"},
		},
		DescriptionKeywords: map[string][]string{
			LevelComponent:       {"single responsibility", "building block", "reusable"},
			LevelSystem:          {"end to end", "integrates", "orchestrates"},
			LevelSystemOfSystems: {"independent systems", "constituent systems", "federated", "emergent"},
		},
	}
}

// Classification is the per-architecture outcome. Peers holds every
// architecture id sharing the level, the subject included, so peer groups
// form a true partition of the run.
type Classification struct {
	ArchitectureID string   `json:"architecture_id"`
	Level          string   `json:"level"`
	Confidence     float64  `json:"confidence"`
	Peers          []string `json:"peers"`
	MissingParent  bool     `json:"missing_parent"`
	Evidence       []string `json:"evidence,omitempty"`
}

// Classifier scores architectures against a Profile.
type Classifier struct {
	profile Profile
}

// NewClassifier builds a classifier; an empty profile falls back to the
// built-in tables.
func NewClassifier(profile Profile) *Classifier {
	if len(profile.Bands) == 0 && len(profile.NameKeywords) == 0 && len(profile.DescriptionKeywords) == 0 {
		profile = DefaultProfile()
	}
	return &Classifier{profile: profile}
}

// Classify returns one Classification per architecture, in input order, with
// peers and missing-parent flags resolved across the whole run.
func (c *Classifier) Classify(architectures []model.Architecture) []Classification {
	out := make([]Classification, len(architectures))
	for i, arch := range architectures {
		out[i] = c.classifyOne(arch)
	}

	byLevel := make(map[string][]string)
	for _, cl := range out {
		byLevel[cl.Level] = append(byLevel[cl.Level], cl.ArchitectureID)
	}
	for level := range byLevel {
		sort.Strings(byLevel[level])
	}

	for i := range out {
		out[i].Peers = append([]string(nil), byLevel[out[i].Level]...)
		parent := parentLevel(out[i].Level)
		if parent != "" && len(byLevel[parent]) == 0 {
			out[i].MissingParent = true
		}
	}
	return out
}

func (c *Classifier) classifyOne(arch model.Architecture) Classification {
	cl := Classification{ArchitectureID: arch.ID}

	if level := canonicalLevel(arch.DeclaredLevel); level != "" {
		cl.Level = level
		cl.Confidence = maxConfidence
		cl.Evidence = []string{fmt.Sprintf("source declares the %s level", level)}
		return cl
	}

	best := LevelUnknown
	bestScore := 0.0
	var bestEvidence []string
	for _, level := range scoredLevels {
		score, evidence := c.scoreLevel(arch, level)
		if score > bestScore {
			best, bestScore, bestEvidence = level, score, evidence
		}
	}

	if bestScore < minLevelScore {
		cl.Level = LevelUnknown
		cl.Confidence = bestScore
		cl.Evidence = []string{"no structural cue scored strongly enough"}
		return cl
	}

	cl.Level = best
	cl.Confidence = capConfidence(bestScore)
	cl.Evidence = bestEvidence
	return cl
}

// scoreLevel adds up the cues a single level earns: count band 0.4, name
// keyword 0.3, description keyword 0.2, nested sub-systems 0.2 (widest level
// only).
func (c *Classifier) scoreLevel(arch model.Architecture, level string) (float64, []string) {
	score := 0.0
	var evidence []string

	if band, ok := c.profile.Bands[level]; ok && band.contains(len(arch.Components)) {
		score += 0.4
		evidence = append(evidence, fmt.Sprintf("%d components fit the %s range", len(arch.Components), level))
	}
	if kw := matchKeyword(foldText(arch.Name), c.profile.NameKeywords[level]); kw != "" {
		score += 0.3
		evidence = append(evidence, fmt.Sprintf("name mentions %q", kw))
	}
	if kw := matchKeyword(foldText(arch.Description), c.profile.DescriptionKeywords[level]); kw != "" {
		score += 0.2
		evidence = append(evidence, fmt.Sprintf("description mentions %q", kw))
	}
	if level == LevelSystemOfSystems && hasNestedSystems(arch) {
		score += 0.2
		evidence = append(evidence, "components are typed as nested systems")
	}
	return score, evidence
}

func parentLevel(level string) string {
	switch level {
	case LevelComponent:
		return LevelSystem
	case LevelSystem:
		return LevelSystemOfSystems
	default:
		return ""
	}
}

// canonicalLevel accepts only the three concrete levels; anything else means
// the source declared nothing usable.
func canonicalLevel(declared string) string {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case LevelComponent:
		return LevelComponent
	case LevelSystem:
		return LevelSystem
	case LevelSystemOfSystems:
		return LevelSystemOfSystems
	default:
		return ""
	}
}

func hasNestedSystems(arch model.Architecture) bool {
	for _, comp := range arch.Components {
		switch strings.ToLower(comp.Type) {
		case "system", "subsystem", "architecture":
			return true
		}
	}
	return false
}

// foldText lowercases and normalizes separators so snake_case and kebab-case
// sources match phrase keywords.
func foldText(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return s
}

// matchKeyword returns the first keyword contained in the folded text, so
// evidence wording is stable for a given profile.
func matchKeyword(folded string, keywords []string) string {
	if folded == "" {
		return ""
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(folded, kw) {
			return kw
		}
	}
	return ""
}

func capConfidence(v float64) float64 {
	if v > maxConfidence {
		return maxConfidence
	}
	if v < 0 {
		return 0
	}
	return v
}
