// Package gfa implements byte-level reading and writing of Graphical
// Fragment Assembly (GFA) files for the bluntification pipeline.
//
// Only the line types the pipeline consumes are parsed:
//   - H: header (accepted and ignored; no tag is kept)
//   - S: segment (name + sequence)
//   - L: link with a CIGAR-described overlap
//
// Segment names are interned through an IncrementalIDMap so the rest of the
// pipeline works with dense integer node ids starting at 1.
package gfa

import (
	"strings"

	"github.com/gfatools/getblunted/pkg/errors"
)

// CigarOp is a single run in a CIGAR string.
type CigarOp struct {
	Length int
	Op     byte // one of M, =, X, I, D
}

// Alignment is a parsed CIGAR describing the aligned overlap between the end
// of a link's source and the beginning of its sink.
type Alignment struct {
	Ops []CigarOp
}

// ParseAlignment parses a CIGAR string such as "14M2D3M".
// The empty placeholder "*" and "0M" both parse to a zero-length alignment.
func ParseAlignment(s string) (Alignment, error) {
	var a Alignment
	if s == "*" {
		return a, nil
	}
	length := 0
	seen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			length = length*10 + int(c-'0')
			seen = true
		case c == 'M' || c == '=' || c == 'X' || c == 'I' || c == 'D':
			if !seen {
				return a, errors.New(errors.ErrCodeMalformedInput, "CIGAR %q: operation %q has no length", s, string(c))
			}
			a.Ops = append(a.Ops, CigarOp{Length: length, Op: c})
			length = 0
			seen = false
		default:
			return a, errors.New(errors.ErrCodeMalformedInput, "CIGAR %q: unsupported character %q", s, string(c))
		}
	}
	if seen {
		return a, errors.New(errors.ErrCodeMalformedInput, "CIGAR %q: trailing length without operation", s)
	}
	return a, nil
}

// ComputeLengths returns the number of bases the alignment consumes on the
// source side (suffix of the link's first segment) and on the sink side
// (prefix of the second). M, = and X consume both; I consumes the source
// only; D consumes the sink only.
func (a Alignment) ComputeLengths() (source, sink int) {
	for _, op := range a.Ops {
		switch op.Op {
		case 'M', '=', 'X':
			source += op.Length
			sink += op.Length
		case 'I':
			source += op.Length
		case 'D':
			sink += op.Length
		}
	}
	return source, sink
}

// IsBlunt reports whether the alignment consumes no bases on either side.
func (a Alignment) IsBlunt() bool {
	s, t := a.ComputeLengths()
	return s == 0 && t == 0
}

// String reconstitutes the CIGAR text. A zero-length alignment renders as "0M".
func (a Alignment) String() string {
	if len(a.Ops) == 0 {
		return "0M"
	}
	var b strings.Builder
	for _, op := range a.Ops {
		writeInt(&b, op.Length)
		b.WriteByte(op.Op)
	}
	return b.String()
}

func writeInt(b *strings.Builder, n int) {
	if n == 0 {
		b.WriteByte('0')
		return
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	b.Write(buf[i:])
}
