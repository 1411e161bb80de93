package assistant

import "context"

type Interface interface {
	// Run performs one full keyword → command → response cycle.
	Run(ctx context.Context) (Result, error)
	State() State
}

// Result is the outcome of a completed run.
type Result struct {
	RunID       string
	Context     string
	Command     string
	Response    string
	SamplePath  string
	CommandPath string
}
