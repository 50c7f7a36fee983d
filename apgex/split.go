package apgex

import "github.com/ldthomas/apgego/alphabet"

// Split divides source into sub-phrases at each match of the pattern
// (treated as a separator):
//
//  1. Rule/UDT capture is disabled for the duration (restored afterward).
//  2. If the pattern matches the empty phrase as a separator, the result is
//     one one-character sub-phrase per character of source (or an empty
//     result, for an empty source).
//  3. Otherwise every non-overlapping separator match divides source into
//     the sub-phrases between them, plus the leading and trailing pieces.
//  4. If limit > 0, at most limit separator matches are used.
//  5. If the pattern never matches, the result is a single sub-phrase
//     spanning the whole source.
//
// The returned sub-phrases always reconstruct source when concatenated
// with the separators that were matched between them.
func (m *Matcher[C]) Split(source []C, limit int) ([]alphabet.Phrase, error) {
	if m.grammar == nil {
		return nil, &SetupError{Err: ErrNoPattern}
	}

	savedRules, savedUDTs := m.parser.SnapshotEnabled()
	m.parser.DisableAllCaptures()
	defer m.parser.RestoreEnabled(savedRules, savedUDTs)

	spans, err := m.collectMatches(source, true)
	if err != nil {
		return nil, err
	}

	if len(spans) > 0 && spans[0].Length == 0 {
		if len(source) == 0 {
			return []alphabet.Phrase{}, nil
		}
		out := make([]alphabet.Phrase, len(source))
		for i := range source {
			out[i] = alphabet.Phrase{Offset: uint(i), Length: 1}
		}
		return out, nil
	}

	if len(spans) == 0 {
		return []alphabet.Phrase{{Offset: 0, Length: uint(len(source))}}, nil
	}

	if limit > 0 && len(spans) > limit {
		spans = spans[:limit]
	}

	out := make([]alphabet.Phrase, 0, len(spans)+1)
	cursor := uint(0)
	for _, span := range spans {
		out = append(out, alphabet.Phrase{Offset: cursor, Length: span.Offset - cursor})
		cursor = span.Offset + span.Length
	}
	out = append(out, alphabet.Phrase{Offset: cursor, Length: uint(len(source)) - cursor})
	return out, nil
}
