package model

// Outcome is the result of a simulated lookup
type Outcome string

const (
	// OutcomeSuccess means a healthy extent node served the file
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure means routing stopped at an unavailable component
	OutcomeFailure Outcome = "failure"
)

// Simulation is the step-by-step serving path of a lookup.
// Components is a display snapshot of every component in registry order.
type Simulation struct {
	Components []ComponentStatus `json:"components"`
	Path       []string          `json:"path"`
	Result     Outcome           `json:"result"`
	Message    string            `json:"message"`
}

// Succeeded reports whether the lookup was served
func (s *Simulation) Succeeded() bool {
	return s.Result == OutcomeSuccess
}

// Last returns the final component on the path, or "" for an empty path
func (s *Simulation) Last() string {
	if len(s.Path) == 0 {
		return ""
	}
	return s.Path[len(s.Path)-1]
}
