package view

import "sync"

// Page is an in-memory page holding whatever the presenters last rendered
type Page struct {
	mu             sync.Mutex
	toast          *Toast
	toastCount     int
	steps          [StepCount]StepState
	results        ResultPanel
	resultsVisible bool
	receipts       []Row
	busy           bool
}

// NewPage returns a Page with every step waiting
func NewPage() *Page {
	p := &Page{}
	for i := range p.steps {
		p.steps[i] = stepState(i+1, StatusWaiting)
	}
	return p
}

// ShowToast keeps t as the last notification
func (p *Page) ShowToast(t Toast) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toast = &t
	p.toastCount++
}

// ShowStep stores the state of step s.Step
func (p *Page) ShowStep(s StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps[s.Step-1] = s
}

// ShowResults stores the panel and makes it visible
func (p *Page) ShowResults(panel ResultPanel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = panel
	p.resultsVisible = true
}

// HideResults hides the panel, keeping its last contents
func (p *Page) HideResults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resultsVisible = false
}

// ShowReceipts replaces the receipts table rows
func (p *Page) ShowReceipts(rows []Row) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.receipts = append([]Row(nil), rows...)
}

// SetBusy toggles the busy indicator
func (p *Page) SetBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = busy
}

// Toast returns the last notification and how many were shown in total
func (p *Page) Toast() (*Toast, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.toast, p.toastCount
}

// Step returns the state of step 1..3
func (p *Page) Step(step int) StepState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.steps[step-1]
}

// Results returns the results panel and whether it is visible
func (p *Page) Results() (ResultPanel, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results, p.resultsVisible
}

// Receipts returns the rows of the receipts table
func (p *Page) Receipts() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Row(nil), p.receipts...)
}

// Busy reports whether the busy indicator is shown and the submit control
// disabled
func (p *Page) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}
