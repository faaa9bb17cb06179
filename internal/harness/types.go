package harness

import "github.com/roach88/luasharp/internal/build"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Report is the build report of the last run.
	Report *build.Report `json:"-"`

	// Outputs maps output paths to the generated Lua after the last run.
	Outputs map[string]string `json:"outputs"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Errors:  []string{},
		Outputs: make(map[string]string),
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
