package model

import (
	"sort"
	"strings"
)

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Warning is a recoverable anomaly recorded alongside results: a dropped
// edge, a skipped component, an unrecognized shape, a low-confidence
// classification. Warnings never abort an analysis.
type Warning struct {
	Code     string  `json:"code"`
	Source   string  `json:"source"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Value    float64 `json:"value,omitempty"`
}

// NewWarning builds a warning, normalizing the severity. Empty code, source,
// or message yields a zero warning the caller should ignore.
func NewWarning(code, source, severity, message string, value float64) Warning {
	w := Warning{
		Code:     strings.TrimSpace(code),
		Source:   strings.TrimSpace(source),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Message:  strings.TrimSpace(message),
		Value:    value,
	}
	if w.Code == "" || w.Source == "" || w.Message == "" {
		return Warning{}
	}
	switch w.Severity {
	case SeverityCritical, SeverityWarning, SeverityInfo:
	default:
		w.Severity = SeverityInfo
	}
	return w
}

// SortWarnings orders in place by severity priority (critical first), then
// source, then code. Deterministic for report output.
func SortWarnings(ws []Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		pi := severityPriority(ws[i].Severity)
		pj := severityPriority(ws[j].Severity)
		if pi != pj {
			return pi > pj
		}
		if ws[i].Source != ws[j].Source {
			return ws[i].Source < ws[j].Source
		}
		return ws[i].Code < ws[j].Code
	})
}

func severityPriority(severity string) int {
	switch severity {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	default:
		return 1
	}
}
