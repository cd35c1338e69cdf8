package report

import (
	"fmt"
	"strings"
)

// Severity ranks a reconciliation message.
type Severity int

const (
	Verbose Severity = iota
	Info
	Important
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Verbose:
		return "VERBOSE"
	case Info:
		return "INFO"
	case Important:
		return "IMPORTANT"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Message is a single entry of the reconciliation transcript.
type Message struct {
	Severity Severity
	Text     string
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.Severity, m.Text)
}

// Sink receives messages in the order they are produced.
type Sink interface {
	Add(m Message)
}

// Addf formats a message and appends it to the sink.
func Addf(s Sink, sev Severity, format string, args ...any) {
	if s == nil {
		return
	}
	s.Add(Message{Severity: sev, Text: fmt.Sprintf(format, args...)})
}

// List is an ordered, in-memory Sink.
type List struct {
	Messages []Message
}

// Add implements Sink.
func (l *List) Add(m Message) {
	l.Messages = append(l.Messages, m)
}

// AtLeast returns the messages whose severity is at least floor.
func (l *List) AtLeast(floor Severity) []Message {
	var out []Message
	for _, m := range l.Messages {
		if m.Severity >= floor {
			out = append(out, m)
		}
	}
	return out
}

// Count returns the number of messages with exactly the given severity.
func (l *List) Count(sev Severity) int {
	n := 0
	for _, m := range l.Messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any Error message was recorded.
func (l *List) HasErrors() bool {
	return l.Count(Error) > 0
}

// Contains reports whether any message text contains substr.
func (l *List) Contains(substr string) bool {
	for _, m := range l.Messages {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}
