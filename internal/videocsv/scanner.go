package videocsv

import (
	"iter"
	"strings"
)

type scanState int

const (
	stateUnquoted scanState = iota
	stateQuoted
	stateQuotedSawQuote
)

// Scanner splits CSV text into records. A field that begins with a double
// quote is read in quoted mode: commas and line breaks are data, a doubled
// quote is one literal quote, and a quote followed by a comma or line break
// closes the field. Both "\n" and "\r\n" terminate a record.
type Scanner struct {
	src     string
	pos     int
	line    int
	recLine int
	state   scanState

	field      strings.Builder
	fieldStart bool
	record     []string
}

// NewScanner returns a Scanner reading from src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Line reports the 1-based line on which the last returned record started.
func (s *Scanner) Line() int {
	return s.recLine
}

// Next returns the next record. ok is false once the input is exhausted.
// A blank line is returned as a record holding one empty field.
func (s *Scanner) Next() (record []string, ok bool) {
	if s.pos >= len(s.src) {
		return nil, false
	}
	s.recLine = s.line + 1
	s.record = nil
	s.field.Reset()
	s.fieldStart = true
	s.state = stateUnquoted

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++

		switch s.state {
		case stateUnquoted:
			switch {
			case c == ',':
				s.endField()
			case c == '\n':
				s.line++
				s.endField()
				return s.finish(), true
			case c == '\r' && s.peek() == '\n':
				// consumed with the following \n
			case c == '"' && s.fieldStart:
				s.state = stateQuoted
				s.fieldStart = false
			default:
				s.field.WriteByte(c)
				s.fieldStart = false
			}

		case stateQuoted:
			if c == '"' {
				s.state = stateQuotedSawQuote
				continue
			}
			if c == '\n' {
				s.line++
			}
			s.field.WriteByte(c)

		case stateQuotedSawQuote:
			switch {
			case c == '"':
				s.field.WriteByte('"')
				s.state = stateQuoted
			case c == ',':
				s.endField()
				s.state = stateUnquoted
			case c == '\n':
				s.line++
				s.endField()
				return s.finish(), true
			case c == '\r' && s.peek() == '\n':
			default:
				// A stray quote inside a quoted field is kept literally.
				s.field.WriteByte('"')
				s.field.WriteByte(c)
				s.state = stateQuoted
			}
		}
	}

	// End of input terminates the record; an unterminated quoted field keeps
	// what was read.
	s.endField()
	return s.finish(), true
}

func (s *Scanner) peek() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

func (s *Scanner) endField() {
	s.record = append(s.record, s.field.String())
	s.field.Reset()
	s.fieldStart = true
}

func (s *Scanner) finish() []string {
	rec := s.record
	s.record = nil
	return rec
}

// Records yields every record in src, blank lines included.
func Records(src string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		sc := NewScanner(src)
		for {
			rec, ok := sc.Next()
			if !ok || !yield(rec) {
				return
			}
		}
	}
}
