package validation

// Issue is one validation failure: a stable code plus context for the
// human-readable report.
type Issue struct {
	Code ErrorCode `json:"code"`
	Info string    `json:"info,omitempty"`
}

// Result accumulates validation issues. Validators append; callers
// inspect only after every independent check has run, so a single pass
// reports every problem at once. Append-only, not safe for concurrent
// writers.
type Result struct {
	issues []Issue
}

// NewResult creates an empty accumulator.
func NewResult() *Result {
	return &Result{}
}

// Append records one issue.
func (r *Result) Append(code ErrorCode, info string) {
	r.issues = append(r.issues, Issue{Code: code, Info: info})
}

// Merge appends every issue of other.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}

	r.issues = append(r.issues, other.issues...)
}

// HasErrors reports whether any issue was recorded.
func (r *Result) HasErrors() bool {
	return len(r.issues) > 0
}

// Issues returns a copy of the recorded issues in append order.
func (r *Result) Issues() []Issue {
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)

	return out
}

// Contains reports whether an issue with the given code was recorded.
func (r *Result) Contains(code ErrorCode) bool {
	for _, issue := range r.issues {
		if issue.Code == code {
			return true
		}
	}

	return false
}

// Len returns the number of recorded issues.
func (r *Result) Len() int {
	return len(r.issues)
}
