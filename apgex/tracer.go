package apgex

// Tracer is an optional observer of top-level matcher searches, attached
// with Matcher.SetTracer. No default implementation ships; it is honored
// only when both a Tracer is attached and the pattern's flags include 't'.
// A small Go interface over entry/exit instrumentation points, rather than
// a global callback table.
type Tracer interface {
	// Enter is called immediately before the start rule is tried at offset.
	Enter(rule string, offset uint)
	// Exit is called immediately after, reporting the outcome.
	Exit(rule string, offset uint, matched bool, length uint)
}
