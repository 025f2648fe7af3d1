package engine

import (
	"sync"
	"time"
)

// DefaultErrorWindow is how long an error banner stays visible.
const DefaultErrorWindow = 3 * time.Second

// Notifier holds a single transient error message with auto-expiry.
// A new Raise replaces the current message and restarts the window;
// messages never stack.
type Notifier struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	gen     uint64
	message string
	active  bool
}

// NewNotifier creates a notifier with the given display window.
// A zero window means DefaultErrorWindow.
func NewNotifier(window time.Duration) *Notifier {
	if window <= 0 {
		window = DefaultErrorWindow
	}
	return &Notifier{window: window}
}

// Raise shows msg and (re)starts the expiry timer.
func (n *Notifier) Raise(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.message = msg
	n.active = true
	n.gen++
	gen := n.gen

	if n.timer != nil {
		n.timer.Stop()
	}
	// The generation check keeps a timer that already fired from
	// clearing a message raised after it.
	n.timer = time.AfterFunc(n.window, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.gen != gen {
			return
		}
		n.message = ""
		n.active = false
	})
}

// Dismiss clears the message immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	n.message = ""
	n.active = false
}

// State returns the current message and whether it is visible.
func (n *Notifier) State() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message, n.active
}
