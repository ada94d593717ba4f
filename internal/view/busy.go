package view

import "sync"

// Busy brackets a long running operation with the busy indicator
type Busy struct {
	view BusyView
}

// NewBusy creates a Busy. A nil view makes it a no-op.
func NewBusy(view BusyView) *Busy {
	return &Busy{view: view}
}

// Acquire shows the busy indicator and disables the submit control. The
// returned release undoes both and is safe to call more than once.
func (b *Busy) Acquire() (release func()) {
	if b == nil || b.view == nil {
		return func() {}
	}
	b.view.SetBusy(true)
	var once sync.Once
	return func() {
		once.Do(func() { b.view.SetBusy(false) })
	}
}
