package domain

import (
	"fmt"
	"strings"
	"time"
)

// IssueSeverity ranks a validation finding. Findings are advisory
// output only; no severity aborts processing.
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// ValidationIssue is one finding produced by a dataset check.
type ValidationIssue struct {
	Severity IssueSeverity `json:"severity"`
	Check    string        `json:"check"`
	Message  string        `json:"message"`
	// Count is the number of affected rows, when the check counts
	// rows rather than naming an identifier.
	Count int `json:"count,omitempty"`
}

// ValidationReport aggregates the issues of every check over one
// dataset.
type ValidationReport struct {
	ID           string            `json:"id"`
	PropertyType PropertyType      `json:"property_type"`
	GeneratedAt  time.Time         `json:"generated_at"`
	RecordCount  int               `json:"record_count"`
	Issues       []ValidationIssue `json:"issues"`
}

// Add appends an issue to the report.
func (r *ValidationReport) Add(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// Valid reports whether no issues were found.
func (r *ValidationReport) Valid() bool {
	return len(r.Issues) == 0
}

// String renders the report as a short human-readable summary.
func (r *ValidationReport) String() string {
	if r.Valid() {
		return "Validation passed: no issues found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Validation found %d issues:\n", len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", issue.Severity, issue.Check, issue.Message)
	}
	return b.String()
}
