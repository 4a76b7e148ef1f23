package models

import "fmt"

// WarningKind classifies a recoverable condition.
type WarningKind string

// Warning kinds
const (
	WarnDegenerateStatistic WarningKind = "degenerate_statistic"
	WarnCoercion            WarningKind = "coercion"
	WarnInfiniteValue       WarningKind = "infinite_value"
	WarnMissingFilled       WarningKind = "missing_filled"
	WarnUnresolvedScenario  WarningKind = "unresolved_scenario"
	WarnEmptyFile           WarningKind = "empty_file"
	WarnUnparsableFile      WarningKind = "unparsable_file"
	WarnSkippedFilter       WarningKind = "skipped_filter"
)

// Warning is a diagnostic record for a condition handled by substitution.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Column string      `json:"column,omitempty"`
	Path   string      `json:"path,omitempty"`
	Count  int         `json:"count,omitempty"`
	Detail string      `json:"detail"`
}

func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s[%s]: %s", w.Kind, w.Column, w.Detail)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}
