package view

import "time"

// DefaultToastDuration is how long a notification stays visible
const DefaultToastDuration = 5 * time.Second

// Notifier shows transient notifications
type Notifier struct {
	view     ToastView
	duration time.Duration
}

// NewNotifier creates a Notifier. A nil view makes Notify a no-op.
func NewNotifier(view ToastView) *Notifier {
	return &Notifier{view: view, duration: DefaultToastDuration}
}

// Notify shows a notification styled by its severity
func (n *Notifier) Notify(title, message string, severity Severity) {
	if n == nil || n.view == nil {
		return
	}
	n.view.ShowToast(Toast{
		Title:    title,
		Message:  message,
		Severity: severity,
		Tone:     toneFor(severity),
		Duration: n.duration,
	})
}

func toneFor(severity Severity) Tone {
	switch severity {
	case SeveritySuccess:
		return ToneSuccess
	case SeverityError:
		return ToneDanger
	case SeverityWarning:
		return ToneWarning
	default:
		return ToneInfo
	}
}
