package apgex

// Mode is the search-position strategy a pattern was compiled with.
type Mode uint8

const (
	// ModeDefault: each Exec scans forward from last_index and always
	// resets last_index to 0 afterward, whether or not it matched.
	ModeDefault Mode = iota
	// ModeGlobal: each Exec scans forward from last_index; on MATCH,
	// last_index advances past the match for the next call.
	ModeGlobal
	// ModeSticky: each Exec tries exactly at last_index, no forward scan.
	ModeSticky
)

func (m Mode) String() string {
	switch m {
	case ModeGlobal:
		return "global"
	case ModeSticky:
		return "sticky"
	default:
		return "default"
	}
}

// flagSettings is the parsed form of a pattern's flags string.
type flagSettings struct {
	mode      Mode
	usePPPT   bool
	trace     bool
	traceHTML bool
}

// parseFlags parses a flags string:
//
//	g          global search mode
//	y          sticky search mode
//	p          use the grammar's PPPT table, if any
//	t          attach/invoke the tracer, if one is set
//	h          trace_html: requires t
//
// 'g' and 'y' are mutually exclusive; whichever appears first in the
// string wins and later occurrences of either are ignored. Any other
// character is ErrUnknownFlag. 'h' without 't' anywhere in the string is
// ErrHTMLWithoutTrace.
func parseFlags(flags string) (flagSettings, error) {
	var fs flagSettings
	modeSet := false
	for _, r := range flags {
		switch r {
		case 'g':
			if !modeSet {
				fs.mode = ModeGlobal
				modeSet = true
			}
		case 'y':
			if !modeSet {
				fs.mode = ModeSticky
				modeSet = true
			}
		case 'p':
			fs.usePPPT = true
		case 't':
			fs.trace = true
		case 'h':
			fs.traceHTML = true
		default:
			return flagSettings{}, &SetupError{Err: ErrUnknownFlag, Detail: string(r)}
		}
	}
	if fs.traceHTML && !fs.trace {
		return flagSettings{}, &SetupError{Err: ErrHTMLWithoutTrace}
	}
	return fs, nil
}
