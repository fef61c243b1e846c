// Package diag provides the single diagnostic type used by every phase of
// the compiler (lexing, parsing, type resolution, evaluation, font
// decoding): a primary location and message plus an ordered list of
// secondary locations, each with its own explanatory message.
//
// This widens syntax.SyntaxError (message + hints) to carry a location per
// hint, since the resolver needs to point at each rejected overload
// individually rather than attach plain text hints to one location.
package diag

import "fmt"

// Location identifies a point in a source file for diagnostic display.
type Location struct {
	File   string
	Offset int
	Line   int // 1-based
	Column int // 1-based, in runes
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Info is a secondary location attached to a Message, e.g. one rejected
// overload candidate with the reason it was rejected.
type Info struct {
	Location Location
	Message  string
}

// Message is the sole diagnostic kind produced anywhere in sap. It
// satisfies the error interface so fallible operations can return it
// directly as their error value.
type Message struct {
	Primary Location
	Text    string
	Infos   []Info
}

// New creates a Message with no secondary infos.
func New(loc Location, format string, args ...any) *Message {
	return &Message{Primary: loc, Text: fmt.Sprintf(format, args...)}
}

// WithInfo appends a secondary location/message pair and returns the
// receiver for chaining.
func (m *Message) WithInfo(loc Location, format string, args ...any) *Message {
	m.Infos = append(m.Infos, Info{Location: loc, Message: fmt.Sprintf(format, args...)})
	return m
}

func (m *Message) Error() string {
	if m.Primary.File == "" && m.Primary.Line == 0 {
		return m.Text
	}
	return fmt.Sprintf("%s: %s", m.Primary, m.Text)
}

// Render produces the user-visible caret-and-column view described in
// spec.md §7: the primary message's source line with a caret under the
// offending column, followed by each info's own caret view.
func Render(m *Message, sourceLine func(Location) string) string {
	out := caretView(m.Primary, m.Text, sourceLine)
	for _, info := range m.Infos {
		out += "\n" + caretView(info.Location, info.Message, sourceLine)
	}
	return out
}

func caretView(loc Location, message string, sourceLine func(Location) string) string {
	line := ""
	if sourceLine != nil {
		line = sourceLine(loc)
	}
	caret := ""
	for i := 1; i < loc.Column; i++ {
		caret += " "
	}
	caret += "^"
	return fmt.Sprintf("%s: %s\n%s\n%s", loc, message, line, caret)
}
