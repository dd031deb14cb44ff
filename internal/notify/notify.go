// Package notify delivers short user-facing messages about completed operations.
//
// A [Notification] corresponds to a toast in a graphical client. Front ends
// choose a sink: the CLI prints styled lines with [Writer], the terminal UI
// reads them off a [Channel], the HTTP server logs them with [Log], and tests
// inspect them with [Recorder].
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Kind classifies a notification.
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is one message shown to the user.
type Notification struct {
	Kind    Kind
	Title   string
	Message string
}

func (n Notification) String() string {
	if n.Message == "" {
		return n.Title
	}
	return n.Title + ": " + n.Message
}

// Notifier receives notifications. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to [Notifier].
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		notifier.Notify(n)
	}
}

// Log writes notifications to a [log.Logger], errors at error level.
type Log struct {
	Logger *log.Logger
}

func (l Log) Notify(n Notification) {
	switch n.Kind {
	case Error:
		l.Logger.Error(n.Title, "message", n.Message)
	default:
		l.Logger.Info(n.Title, "message", n.Message, "kind", n.Kind)
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the notifications received so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Channel forwards notifications to C without blocking; when C is full the notification is dropped.
type Channel struct {
	C chan Notification
}

// NewChannel creates a [Channel] with the given buffer size.
func NewChannel(size int) *Channel {
	return &Channel{C: make(chan Notification, size)}
}

func (c *Channel) Notify(n Notification) {
	select {
	case c.C <- n:
	default:
	}
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4"))
)

// Style returns the title style for kind.
func Style(k Kind) lipgloss.Style {
	switch k {
	case Success:
		return successStyle
	case Error:
		return errorStyle
	default:
		return infoStyle
	}
}

// Render formats n as a single styled line.
func Render(n Notification) string {
	icon := map[Kind]string{Success: "✓", Error: "✗", Info: "•"}[n.Kind]
	line := Style(n.Kind).Render(icon + " " + n.Title)
	if n.Message != "" {
		line += " " + messageStyle.Render(n.Message)
	}
	return line
}

// Writer prints styled notifications to W, one per line.
type Writer struct {
	mu sync.Mutex
	W  io.Writer
}

// NewWriter creates a [Writer] for w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{W: w}
}

func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.W, Render(n))
}
