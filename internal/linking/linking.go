// Package linking proposes metaphor-based touchpoints between architectures
// from unrelated domains. Aligned pairs are left to the structural analyzers.
package linking

import (
	"fmt"
	"sort"
	"strings"

	"archlens/internal/model"
)

// Orthogonality verdicts.
const (
	Aligned    = "aligned"
	Orthogonal = "orthogonal"
)

const defaultMaxTouchpoints = 5

// Touchpoint pairs one component from each side through a shared functional
// role. Metaphor is always non-empty.
type Touchpoint struct {
	ComponentA string  `json:"component_a"`
	ComponentB string  `json:"component_b"`
	Role       string  `json:"role"`
	Metaphor   string  `json:"metaphor"`
	Confidence float64 `json:"confidence"`
}

// LinkingOpportunity is the per-pair outcome. Aligned pairs carry an empty
// touchpoint list by contract.
type LinkingOpportunity struct {
	Pair          model.Pair   `json:"pair"`
	Orthogonality string       `json:"orthogonality"`
	Touchpoints   []Touchpoint `json:"touchpoints"`
}

// RoleRule maps a functional role to the keywords that betray it. Rules are
// ordered; the first match wins.
type RoleRule struct {
	Role     string
	Keywords []string
}

// DefaultRoleRules returns the built-in role vocabulary.
func DefaultRoleRules() []RoleRule {
	return []RoleRule{
		{Role: "regulatory", Keywords: []string{"regulat", "control", "monitor", "feedback", "governor", "thermostat", "valve"}},
		{Role: "transport", Keywords: []string{"transport", "transfer", "carrier", "bus", "channel", "circulat", "messag", "conduit"}},
		{Role: "storage", Keywords: []string{"storage", "store", "cache", "memory", "reservoir", "database", "repository", "archive"}},
		{Role: "processing", Keywords: []string{"process", "transform", "compute", "digest", "metaboli", "parser", "refinery"}},
		{Role: "interface", Keywords: []string{"interface", "gateway", "port", "membrane", "api", "bridge", "adapter"}},
		{Role: "generation", Keywords: []string{"generat", "produce", "synthes", "emit", "source", "factory"}},
	}
}

type analogy struct {
	domainX string
	domainY string
	role    string
	phrase  string
}

// analogies is the fixed cross-domain table; lookups match either direction.
var analogies = []analogy{
	{"biological", "software", "regulatory", "homeostatic feedback maps to a control loop"},
	{"biological", "software", "transport", "circulatory flow maps to message passing"},
	{"biological", "software", "storage", "energy reserves map to a durable cache"},
	{"biological", "software", "processing", "metabolism maps to stream processing"},
	{"biological", "software", "interface", "membrane exchange maps to an API boundary"},
	{"biological", "software", "generation", "protein synthesis maps to event generation"},
	{"mechanical", "software", "regulatory", "a governor valve maps to rate limiting"},
	{"mechanical", "software", "transport", "a drive belt maps to a message bus"},
	{"mechanical", "software", "storage", "a flywheel maps to a write buffer"},
	{"biological", "mechanical", "regulatory", "hormonal balance maps to governor tension"},
	{"biological", "mechanical", "transport", "blood circulation maps to hydraulic flow"},
}

// Linker assesses orthogonality and proposes touchpoints.
type Linker struct {
	roles []RoleRule
	limit int
}

// NewLinker builds a linker; empty rules or a non-positive limit fall back to
// the defaults.
func NewLinker(roles []RoleRule, maxTouchpoints int) *Linker {
	if len(roles) == 0 {
		roles = DefaultRoleRules()
	}
	if maxTouchpoints <= 0 {
		maxTouchpoints = defaultMaxTouchpoints
	}
	return &Linker{roles: roles, limit: maxTouchpoints}
}

// Assess reports aligned when domains match, or when frameworks match and
// carry information. "unknown" frameworks align nothing.
func (l *Linker) Assess(a, b model.Architecture) string {
	if strings.EqualFold(a.Domain, b.Domain) {
		return Aligned
	}
	if strings.EqualFold(a.Framework, b.Framework) && !strings.EqualFold(a.Framework, model.DefaultFramework) {
		return Aligned
	}
	return Orthogonal
}

// Link wraps assessment and proposal for one pair.
func (l *Linker) Link(a, b model.Architecture) LinkingOpportunity {
	opp := LinkingOpportunity{
		Pair:          model.NewPair(a.ID, b.ID),
		Orthogonality: l.Assess(a, b),
		Touchpoints:   []Touchpoint{},
	}
	if opp.Orthogonality == Orthogonal {
		opp.Touchpoints = l.ProposeTouchpoints(a, b)
	}
	return opp
}

// ProposeTouchpoints pairs components that share a functional role but no
// name token. Both roles read from the component type score 0.6; a keyword
// fallback on either side scores 0.3. Aligned pairs get nothing.
func (l *Linker) ProposeTouchpoints(a, b model.Architecture) []Touchpoint {
	if l.Assess(a, b) == Aligned {
		return []Touchpoint{}
	}

	points := []Touchpoint{}
	for _, compA := range a.Components {
		roleA, typedA := l.roleOf(compA)
		if roleA == "" {
			continue
		}
		for _, compB := range b.Components {
			if sharesNameToken(compA.Name, compB.Name) {
				continue
			}
			roleB, typedB := l.roleOf(compB)
			if roleB != roleA {
				continue
			}
			confidence := 0.3
			if typedA && typedB {
				confidence = 0.6
			}
			points = append(points, Touchpoint{
				ComponentA: compA.Name,
				ComponentB: compB.Name,
				Role:       roleA,
				Metaphor:   l.metaphor(compA.Name, compB.Name, roleA, a.Domain, b.Domain),
				Confidence: confidence,
			})
		}
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Confidence != points[j].Confidence {
			return points[i].Confidence > points[j].Confidence
		}
		if points[i].ComponentA != points[j].ComponentA {
			return points[i].ComponentA < points[j].ComponentA
		}
		return points[i].ComponentB < points[j].ComponentB
	})
	if len(points) > l.limit {
		points = points[:l.limit]
	}
	return points
}

// roleOf resolves a component's functional role. The second return reports
// whether the component type itself carried the evidence.
func (l *Linker) roleOf(comp model.Component) (string, bool) {
	typeText := foldText(comp.Type)
	for _, rule := range l.roles {
		if containsAny(typeText, rule.Keywords) {
			return rule.Role, true
		}
	}
	weak := foldText(comp.Name) + " " + attributeText(comp)
	for _, rule := range l.roles {
		if containsAny(weak, rule.Keywords) {
			return rule.Role, false
		}
	}
	return "", false
}

func (l *Linker) metaphor(nameA, nameB, role, domainA, domainB string) string {
	phrase := analogyPhrase(foldText(domainA), foldText(domainB), role)
	if phrase == "" {
		phrase = fmt.Sprintf("the %s role carries across unrelated structures", role)
	}
	return fmt.Sprintf("%s and %s both play the %s role: %s", nameA, nameB, role, phrase)
}

func analogyPhrase(domainA, domainB, role string) string {
	for _, a := range analogies {
		if a.role != role {
			continue
		}
		if (a.domainX == domainA && a.domainY == domainB) || (a.domainX == domainB && a.domainY == domainA) {
			return a.phrase
		}
	}
	return ""
}

func sharesNameToken(nameA, nameB string) bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(foldText(nameA)) {
		tokens[tok] = true
	}
	for _, tok := range strings.Fields(foldText(nameB)) {
		if tokens[tok] {
			return true
		}
	}
	return false
}

func attributeText(comp model.Component) string {
	if len(comp.Attributes) == 0 {
		return ""
	}
	keys := make([]string, 0, len(comp.Attributes))
	for key := range comp.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		switch value := comp.Attributes[key].(type) {
		case string:
			parts = append(parts, foldText(value))
		case []string:
			for _, s := range value {
				parts = append(parts, foldText(s))
			}
		case []any:
			for _, item := range value {
				if s, ok := item.(string); ok {
					parts = append(parts, foldText(s))
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

func foldText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(folded string, keywords []string) bool {
	if folded == "" {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
