// Package notify carries user-visible notifications (toasts) from the record
// layer and the transport to whatever surface is showing them.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a single user-visible notification.
type Notice struct {
	Level Level
	Title string
	Body  string
}

func (n Notice) String() string {
	if n.Body == "" {
		return n.Title
	}
	return n.Title + ": " + n.Body
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a plain function to Notifier.
type Func func(n Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// LogNotifier writes notices to a zerolog logger.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (l LogNotifier) Notify(n Notice) {
	evt := l.Logger.Info()
	if n.Level == LevelError {
		evt = l.Logger.Warn()
	}
	evt.Str("level_hint", string(n.Level)).Str("title", n.Title).Msg(n.Body)
}

// Writer prints notices as single lines, for terminal output.
type Writer struct {
	Out io.Writer
}

func (w Writer) Notify(n Notice) {
	prefix := "*"
	if n.Level == LevelError {
		prefix = "!"
	}
	fmt.Fprintf(w.Out, "%s %s\n", prefix, n)
}

// Multi fans a notice out to several notifiers in order.
func Multi(ns ...Notifier) Notifier {
	return Func(func(n Notice) {
		for _, x := range ns {
			x.Notify(n)
		}
	})
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Len returns how many notices were recorded.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}
