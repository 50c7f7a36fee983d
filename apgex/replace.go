package apgex

import (
	"strings"

	"github.com/ldthomas/apgego/alphabet"
)

// charsToString renders an ASCII-range character slice as a string, for
// matching/looking up `$<name>` capture names. Rule/UDT names are always
// ASCII, so this is safe regardless of the alphabet's native width.
func charsToString[C alphabet.Char](s []C) string {
	b := make([]byte, len(s))
	for i, c := range s {
		b[i] = byte(c)
	}
	return string(b)
}

// expandReplacement scans replacement for `$`-escapes and builds the
// literal output for one match:
//
//	$$        a literal '$'
//	$_        the whole source
//	$&        the matched phrase
//	$`        the left context (source before the match)
//	$'        the right context (source after the match)
//	$<name>   the most recent capture of rule/UDT name within this match,
//	          or empty if name is known but wasn't captured this time
func (m *Matcher[C]) expandReplacement(source, replacement []C, span matchSpan) ([]C, error) {
	var out []C
	dollar := C('$')
	i := 0
	for i < len(replacement) {
		ch := replacement[i]
		if ch != dollar {
			out = append(out, ch)
			i++
			continue
		}
		if i+1 >= len(replacement) {
			return nil, &ReplacementError{Offset: uint(i), Err: ErrTrailingDollar}
		}
		switch replacement[i+1] {
		case C('$'):
			out = append(out, dollar)
			i += 2
		case C('_'):
			out = append(out, source...)
			i += 2
		case C('&'):
			out = append(out, source[span.Offset:span.Offset+span.Length]...)
			i += 2
		case C('`'):
			out = append(out, source[:span.Offset]...)
			i += 2
		case C('\''):
			out = append(out, source[span.Offset+span.Length:]...)
			i += 2
		case C('<'):
			end := -1
			for j := i + 2; j < len(replacement); j++ {
				if replacement[j] == C('>') {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, &ReplacementError{Offset: uint(i), Err: ErrUnterminatedName}
			}
			name := strings.ToLower(charsToString(replacement[i+2 : end]))
			if _, known := m.ruleIndex[name]; !known {
				if _, known = m.udtIndex[name]; !known {
					return nil, &ReplacementError{Offset: uint(i), Err: ErrUnknownCaptureName}
				}
			}
			if caps, ok := span.Captures[name]; ok && len(caps) > 0 {
				last := caps[len(caps)-1]
				out = append(out, source[last.Offset:last.Offset+last.Length]...)
			}
			i = end + 1
		default:
			return nil, &ReplacementError{Offset: uint(i), Err: ErrUnknownEscape}
		}
	}
	return out, nil
}

// Replace locates matches of the pattern in source and substitutes
// replacement (after `$`-escape expansion) for each: in default mode only
// the first match is replaced; in global or sticky mode, every match is.
func (m *Matcher[C]) Replace(source, replacement []C) ([]C, error) {
	if m.grammar == nil {
		return nil, &SetupError{Err: ErrNoPattern}
	}
	spans, err := m.collectMatches(source, m.flags.mode != ModeDefault)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return append([]C(nil), source...), nil
	}

	var out []C
	cursor := uint(0)
	for _, span := range spans {
		out = append(out, source[cursor:span.Offset]...)
		rep, err := m.expandReplacement(source, replacement, span)
		if err != nil {
			return nil, err
		}
		out = append(out, rep...)
		cursor = span.Offset + span.Length
	}
	out = append(out, source[cursor:]...)
	return out, nil
}

// ReplaceWithFunc is invoked once per match located by ReplaceWith, and
// returns the literal replacement text for that match.
type ReplaceWithFunc[C alphabet.Char] func(result Result[C], props Properties, userData any) []C

// ReplaceWith is Replace's programmable form: instead of a `$`-escaped
// replacement string, fn is called with each match's Result and the
// matcher's current Properties, and its return value is substituted
// verbatim.
func (m *Matcher[C]) ReplaceWith(source []C, fn ReplaceWithFunc[C], userData any) ([]C, error) {
	if m.grammar == nil {
		return nil, &SetupError{Err: ErrNoPattern}
	}
	spans, err := m.collectMatches(source, m.flags.mode != ModeDefault)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return append([]C(nil), source...), nil
	}

	props := m.Properties()
	var out []C
	cursor := uint(0)
	for _, span := range spans {
		out = append(out, source[cursor:span.Offset]...)
		result := Result[C]{
			Matched:      true,
			Offset:       span.Offset,
			Length:       span.Length,
			LeftContext:  alphabet.Phrase{Offset: 0, Length: span.Offset},
			RightContext: alphabet.Phrase{Offset: span.Offset + span.Length, Length: uint(len(source)) - (span.Offset + span.Length)},
			Captures:     span.Captures,
		}
		out = append(out, fn(result, props, userData)...)
		cursor = span.Offset + span.Length
	}
	out = append(out, source[cursor:]...)
	return out, nil
}
