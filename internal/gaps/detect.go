package gaps

import (
	"fmt"
	"sort"
	"strings"
)

// GapReport collects everything the matrix gave away about what is missing.
type GapReport struct {
	Orphans              []string              `json:"orphans"`
	Cycles               [][]string            `json:"cycles"`
	InterfaceGaps        []InterfaceGap        `json:"interface_gaps"`
	MissingSystemProfile *MissingSystemProfile `json:"missing_system_profile,omitempty"`
}

// InterfaceGap is a required interface nothing in the matrix provides.
type InterfaceGap struct {
	Interface  string `json:"interface"`
	RequiredBy string `json:"required_by"`
}

// MissingSystemProfile characterizes a system the run implies but nobody
// modeled. Tags are sorted; Indicators line up with them.
type MissingSystemProfile struct {
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
	Indicators []string `json:"indicators"`
}

// Indicator tags, in evaluation order.
const (
	TagRegulatoryControl = "regulatory_control"
	TagKeystone          = "keystone"
	TagNegativeFeedback  = "negative_feedback"
	TagIntegrationHub    = "integration_hub"
)

var regulatoryKeywords = []string{"control", "regulate", "feedback", "monitor", "govern", "orchestrate"}

// profileConfidence indexes by the number of agreeing indicators.
var profileConfidence = []float64{0, 0.3, 0.5, 0.7, 0.85}

// Detect is pure over the built matrix; running it twice yields identical
// reports.
func Detect(m *Matrix) GapReport {
	report := GapReport{
		Orphans:       []string{},
		Cycles:        [][]string{},
		InterfaceGaps: m.interfaceGaps(),
	}

	multiArch := m.ArchitectureCount() >= 2
	for _, node := range m.Nodes {
		if len(m.out[node]) > 0 || len(m.in[node]) > 0 {
			continue
		}
		if arch, isComponent := m.archOf[node]; isComponent {
			// An unwired component only matters when its architecture
			// bothered to wire components at all.
			if m.wired[arch] {
				report.Orphans = append(report.Orphans, node)
			}
		} else if multiArch {
			report.Orphans = append(report.Orphans, node)
		}
	}

	report.Cycles = m.findCycles()
	if multiArch {
		report.MissingSystemProfile = m.profile(report)
	}
	return report
}

// findCycles walks every node in sorted order with an iterative three-color
// DFS. Each cycle is rotated so its smallest id leads, then deduped.
func (m *Matrix) findCycles() [][]string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(m.Nodes))
	seen := make(map[string]bool)
	cycles := [][]string{}

	type frame struct {
		node string
		next int
	}

	for _, start := range m.Nodes {
		if color[start] != white {
			continue
		}
		color[start] = gray
		stack := []frame{{node: start}}
		path := []string{start}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := m.out[top.node]
			if top.next < len(neighbors) {
				next := neighbors[top.next]
				top.next++
				switch color[next] {
				case white:
					color[next] = gray
					stack = append(stack, frame{node: next})
					path = append(path, next)
				case gray:
					cycle := extractCycle(path, next)
					key := strings.Join(cycle, "|")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
				}
				continue
			}
			color[top.node] = black
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i], "|") < strings.Join(cycles[j], "|")
	})
	return cycles
}

// extractCycle slices the current path from the revisited node onward and
// rotates the smallest id to the front.
func extractCycle(path []string, from string) []string {
	start := 0
	for i, node := range path {
		if node == from {
			start = i
			break
		}
	}
	cycle := append([]string(nil), path[start:]...)

	smallest := 0
	for i := 1; i < len(cycle); i++ {
		if cycle[i] < cycle[smallest] {
			smallest = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[smallest:]...)
	rotated = append(rotated, cycle[:smallest]...)
	return rotated
}

// interfaceGaps matches every required interface against the run-wide
// provides set, case-insensitively.
func (m *Matrix) interfaceGaps() []InterfaceGap {
	provided := make(map[string]bool)
	for _, comp := range m.comps {
		for _, iface := range comp.provides {
			provided[foldName(iface)] = true
		}
	}

	gaps := []InterfaceGap{}
	seen := make(map[string]bool)
	for _, comp := range m.comps {
		for _, iface := range comp.requires {
			if provided[foldName(iface)] {
				continue
			}
			key := foldName(iface) + "\x00" + comp.qid
			if seen[key] {
				continue
			}
			seen[key] = true
			gaps = append(gaps, InterfaceGap{Interface: iface, RequiredBy: comp.qid})
		}
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Interface != gaps[j].Interface {
			return gaps[i].Interface < gaps[j].Interface
		}
		return gaps[i].RequiredBy < gaps[j].RequiredBy
	})
	return gaps
}

// profile reads the report's imbalance signals against a closed indicator
// set. Nil when nothing fires.
func (m *Matrix) profile(report GapReport) *MissingSystemProfile {
	type finding struct {
		tag    string
		detail string
	}
	var fired []finding

	for _, gap := range report.InterfaceGaps {
		if containsAny(foldName(gap.Interface), regulatoryKeywords) {
			fired = append(fired, finding{TagRegulatoryControl,
				fmt.Sprintf("unmatched required interface %q names a control concern", gap.Interface)})
			break
		}
	}

	orphanArchs := make(map[string]bool)
	for _, orphan := range report.Orphans {
		orphanArchs[m.ownerOf(orphan)] = true
	}
	if len(report.Orphans) >= 2 && len(orphanArchs) >= 2 {
		fired = append(fired, finding{TagKeystone,
			fmt.Sprintf("%d orphaned nodes span %d architectures", len(report.Orphans), len(orphanArchs))})
	}

	if len(report.Cycles) >= 1 && !m.hasRegulator() {
		fired = append(fired, finding{TagNegativeFeedback,
			"cycles run with no monitoring or regulating component in sight"})
	}

	zeroIn := 0
	for _, arch := range m.archIDs {
		if len(m.in[arch]) == 0 {
			zeroIn++
		}
	}
	maxIn := 0
	for _, node := range m.Nodes {
		if len(m.in[node]) > maxIn {
			maxIn = len(m.in[node])
		}
	}
	if zeroIn >= 2 && maxIn >= 2 {
		fired = append(fired, finding{TagIntegrationHub,
			fmt.Sprintf("%d architectures receive nothing while one node concentrates %d inbound edges", zeroIn, maxIn)})
	}

	if len(fired) == 0 {
		return nil
	}
	sort.Slice(fired, func(i, j int) bool { return fired[i].tag < fired[j].tag })

	profile := &MissingSystemProfile{}
	for _, f := range fired {
		profile.Tags = append(profile.Tags, f.tag)
		profile.Indicators = append(profile.Indicators, f.detail)
	}
	count := len(fired)
	if count >= len(profileConfidence) {
		count = len(profileConfidence) - 1
	}
	profile.Confidence = profileConfidence[count]
	return profile
}

func (m *Matrix) hasRegulator() bool {
	for _, comp := range m.comps {
		if strings.Contains(comp.foldedName, "monitor") || strings.Contains(comp.foldedName, "regulat") ||
			strings.Contains(comp.foldedType, "monitor") || strings.Contains(comp.foldedType, "regulat") {
			return true
		}
	}
	return false
}

func containsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
