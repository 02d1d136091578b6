package job

// StepName identifies one of the four pipeline steps.
type StepName string

const (
	StepDownload StepName = "download"
	StepSlice    StepName = "slice"
	StepUpload   StepName = "upload"
	StepPrint    StepName = "print"
)

// Step records the outcome of a single pipeline step. Steps are created once
// per run, in execution order, and never mutated after being recorded.
// Details may duplicate Message when no extra diagnostic exists.
type Step struct {
	Name    StepName
	Success bool
	Message string
	Details string
}

// Result is the immutable report of one orchestration run. Steps contains
// only the steps that actually ran; a failed run stops at its first failing
// step and records nothing for the steps after it.
type Result struct {
	RequestID string
	Success   bool
	Message   string
	Steps     []Step
}

// FailedStep returns the first failing step, or nil when every recorded step
// succeeded.
func (r Result) FailedStep() *Step {
	for i := range r.Steps {
		if !r.Steps[i].Success {
			return &r.Steps[i]
		}
	}
	return nil
}
