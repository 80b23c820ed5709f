package widget

import "strings"

// Segment is a run of text sharing one style
type Segment struct {
	Text       string `json:"text"`
	Foreground string `json:"foreground,omitempty"`
	Background string `json:"background,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
}

// Line is one display line made of styled segments
type Line struct {
	Segments []Segment `json:"segments"`
}

// String returns the line's plain text
func (l Line) String() string {
	var sb strings.Builder
	for _, seg := range l.Segments {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// TextBuffer is an ordered, capped list of display lines. Segments are added
// to the open line until FinishLine closes it.
type TextBuffer struct {
	lines []Line
	open  bool
	max   int
}

// NewTextBuffer creates a buffer holding at most max lines
func NewTextBuffer(max int) *TextBuffer {
	if max <= 0 {
		max = DefaultMaxLines
	}
	return &TextBuffer{max: max}
}

// Append adds a segment to the open line, starting a new line if none is open
func (b *TextBuffer) Append(seg Segment) {
	if !b.open {
		b.pushLine()
		b.open = true
	}
	last := &b.lines[len(b.lines)-1]
	last.Segments = append(last.Segments, seg)
}

// pushLine adds an empty line, evicting the oldest once the cap is reached
func (b *TextBuffer) pushLine() {
	if len(b.lines) < b.max {
		b.lines = append(b.lines, Line{})
		return
	}
	copy(b.lines, b.lines[1:])
	b.lines[len(b.lines)-1] = Line{}
}

// FinishLine closes the open line. A no-op if no line is open.
func (b *TextBuffer) FinishLine() {
	b.open = false
}

// Open reports whether a line is waiting for more segments
func (b *TextBuffer) Open() bool {
	return b.open
}

// Clear drops every line
func (b *TextBuffer) Clear() {
	b.lines = nil
	b.open = false
}

// Len returns the number of lines held
func (b *TextBuffer) Len() int {
	return len(b.lines)
}

// Max returns the line cap
func (b *TextBuffer) Max() int {
	return b.max
}

// Lines returns a copy of the held lines, oldest first
func (b *TextBuffer) Lines() []Line {
	out := make([]Line, len(b.lines))
	for i, l := range b.lines {
		out[i] = Line{Segments: append([]Segment(nil), l.Segments...)}
	}
	return out
}

// Strings returns the plain text of every line, oldest first
func (b *TextBuffer) Strings() []string {
	out := make([]string, len(b.lines))
	for i, l := range b.lines {
		out[i] = l.String()
	}
	return out
}

// Text returns the buffer as newline-joined plain text
func (b *TextBuffer) Text() string {
	return strings.Join(b.Strings(), "\n")
}
