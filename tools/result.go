package tools

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Result defines the outcome of a tool execution.
type Result interface {
	// Label returns a short single line description of the entire tool run.
	Label() string
	// Text returns the payload handed back to the host.
	Text() string
	// Error returns the error that occurred during the tool run, if any.
	Error() error
}

type result struct {
	label string
	text  string
	err   error
}

func (r *result) Label() string {
	return r.label
}

func (r *result) Text() string {
	return r.text
}

func (r *result) Error() error {
	return r.err
}

func Error(err error) Result {
	return ErrorWithLabel("", err)
}

func Errorf(format string, args ...any) Result {
	return ErrorWithLabel("", fmt.Errorf(format, args...))
}

func ErrorWithLabel(label string, err error) Result {
	if err == nil {
		panic("tools: cannot create error result with nil error")
	}
	text := fmt.Sprintf("Error: %s", err)
	if label == "" {
		label = text
	}
	return &result{label, text, err}
}

// Success creates a result by marshaling the value to JSON text. It attempts
// to generate a label automatically from the value if it implements
// fmt.Stringer.
func Success(value any) Result {
	label := "Success"
	if stringer, ok := value.(fmt.Stringer); ok {
		label = shortLabel(stringer.String())
	}
	return SuccessWithLabel(label, value)
}

// SuccessWithLabel creates a result with an explicit label by marshaling the
// value to JSON text.
func SuccessWithLabel(label string, value any) Result {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrorWithLabel(fmt.Sprintf("Error (%s)", label), fmt.Errorf("failed to marshal success result to JSON: %w", err))
	}
	if label == "" {
		label = "Success"
	}
	return &result{label: label, text: string(data)}
}

// Message creates a result carrying a human readable sentence that describes
// why the tool could not produce data. It is not an error from the host's
// point of view: the sentence is the answer.
func Message(sentence string) Result {
	return &result{label: shortLabel(sentence), text: sentence}
}

// Messagef is Message with fmt.Sprintf formatting.
func Messagef(format string, args ...any) Result {
	return Message(fmt.Sprintf(format, args...))
}

// shortLabel keeps auto-labels to 80 runes.
func shortLabel(s string) string {
	if utf8.RuneCountInString(s) <= 80 {
		return s
	}
	runes := []rune(s)
	return string(runes[:77]) + "..."
}
