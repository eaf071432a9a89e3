package tui

// host is the terminal side of the form's collaborators. It collects the
// messages the form wants to show and renders them in the status line.
type host struct {
	status  string
	isAlert bool
	home    bool
}

// Notify implements form.Notifier.
func (h *host) Notify(msg string) {
	h.status = msg
	h.isAlert = false
}

// Alert implements form.Prompter.
func (h *host) Alert(msg string) {
	h.status = msg
	h.isAlert = true
}

// Confirm implements form.Prompter. The terminal form shows its own
// confirmation dialog before building the batch.
func (h *host) Confirm(string) bool { return true }

// Home implements form.Navigator. Leaving the form is the landing view.
func (h *host) Home() { h.home = true }

func (h *host) clear() {
	h.status = ""
	h.isAlert = false
}
