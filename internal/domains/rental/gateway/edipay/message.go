package edipay

import (
	"fmt"
	"strings"
)

// EDIFACT delimiters, fixed to the default UNA set the provider uses.
const (
	componentSep = ':'
	elementSep   = '+'
	escapeChar   = '?'
	segmentTerm  = '\''
)

// Segment is one EDIFACT segment: a three-letter tag plus data elements,
// each element a list of components.
type Segment struct {
	Tag      string
	Elements [][]string
}

// Comp returns the component at (element, index), or "" when absent.
// Provider responses omit trailing components freely, so lookups must
// tolerate short slices.
func (s Segment) Comp(element, index int) string {
	if element >= len(s.Elements) {
		return ""
	}
	if index >= len(s.Elements[element]) {
		return ""
	}
	return s.Elements[element][index]
}

// Elem is shorthand for the first component of an element.
func (s Segment) Elem(element int) string {
	return s.Comp(element, 0)
}

func escape(v string) string {
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case componentSep, elementSep, escapeChar, segmentTerm:
			b.WriteByte(escapeChar)
		}
		b.WriteByte(v[i])
	}
	return b.String()
}

// Encode serializes segments into one interchange. No UNA header is
// emitted; both sides assume the default delimiter set.
func Encode(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Tag)
		for _, el := range seg.Elements {
			b.WriteByte(elementSep)
			for i, comp := range el {
				if i > 0 {
					b.WriteByte(componentSep)
				}
				b.WriteString(escape(comp))
			}
		}
		b.WriteByte(segmentTerm)
	}
	return b.String()
}

// Decode parses an interchange back into segments. It is the inverse of
// Encode for well-formed input and rejects anything else.
func Decode(raw string) ([]Segment, error) {
	var segments []Segment

	var (
		seg     *Segment
		element []string
		comp    strings.Builder
	)

	flushComponent := func() {
		element = append(element, comp.String())
		comp.Reset()
	}
	flushElement := func() {
		if seg.Tag == "" {
			seg.Tag = comp.String()
			comp.Reset()
			return
		}
		flushComponent()
		seg.Elements = append(seg.Elements, element)
		element = nil
	}

	escaped := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if seg == nil {
			if c == '\n' || c == '\r' || c == ' ' {
				continue
			}
			seg = &Segment{}
		}

		if escaped {
			comp.WriteByte(c)
			escaped = false
			continue
		}

		switch c {
		case escapeChar:
			escaped = true
		case componentSep:
			if seg.Tag == "" {
				return nil, fmt.Errorf("edipay: component separator inside segment tag at byte %d", i)
			}
			flushComponent()
		case elementSep:
			flushElement()
		case segmentTerm:
			flushElement()
			if seg.Tag == "" {
				return nil, fmt.Errorf("edipay: empty segment at byte %d", i)
			}
			segments = append(segments, *seg)
			seg = nil
		default:
			comp.WriteByte(c)
		}
	}
	if escaped {
		return nil, fmt.Errorf("edipay: dangling escape at end of input")
	}
	if seg != nil {
		return nil, fmt.Errorf("edipay: unterminated segment %q", seg.Tag)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("edipay: empty interchange")
	}
	return segments, nil
}

// Find returns the first segment with the given tag.
func Find(segments []Segment, tag string) (Segment, bool) {
	for _, s := range segments {
		if s.Tag == tag {
			return s, true
		}
	}
	return Segment{}, false
}
