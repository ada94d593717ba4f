package view

// Status is the state of a pipeline step. Values outside the four
// constants are shown verbatim.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// StepCount is the number of pipeline steps
const StepCount = 3

var stepNames = [StepCount]string{"Upload", "Validate", "Process"}

// StepBoard renders the status of the three pipeline steps
type StepBoard struct {
	steps   StepView
	results ResultsView
}

// NewStepBoard creates a StepBoard. Either view may be nil.
func NewStepBoard(steps StepView, results ResultsView) *StepBoard {
	return &StepBoard{steps: steps, results: results}
}

// SetStatus replaces the label and styling of a step
func (b *StepBoard) SetStatus(step int, status Status) {
	if b == nil || b.steps == nil || step < 1 || step > StepCount {
		return
	}
	b.steps.ShowStep(stepState(step, status))
}

// Reset puts every step back to waiting and hides the results panel
func (b *StepBoard) Reset() {
	if b == nil {
		return
	}
	for step := 1; step <= StepCount; step++ {
		b.SetStatus(step, StatusWaiting)
	}
	if b.results != nil {
		b.results.HideResults()
	}
}

func stepState(step int, status Status) StepState {
	s := StepState{Step: step, Name: stepNames[step-1]}
	switch status {
	case StatusSuccess:
		s.Label, s.Badge, s.Text = "Complete", ToneSuccess, ToneSuccess
	case StatusError:
		s.Label, s.Badge, s.Text = "Failed", ToneDanger, ToneDanger
	case StatusProcessing:
		s.Label, s.Badge = "Processing", TonePrimary
	case StatusWaiting:
		s.Label, s.Badge = "Waiting", ToneNeutral
	default:
		s.Label, s.Badge = string(status), ToneWarning
	}
	return s
}
