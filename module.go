package vplanet

// Module is the capability record every physics module implements. Its
// method set is named, not indexed, directly following the teacher's
// EPThruster interface (Min/Max/Thrust as named capability methods)
// generalized to the hook set the dispatch matrix needs. See
// SPEC_FULL.md §4.2.
type Module interface {
	// Name identifies the module in logs and error messages.
	Name() string

	// ReadOptions parses this module's options out of a body's input file,
	// deleting each option it consumes from opts (the caller reports what
	// is left as unrecognized) and returning an *InputError for a value it
	// cannot parse. The reference modules ignore the "negative unit" flag
	// ParseFloatOption reports.
	ReadOptions(b *Body, opts map[string]string) error

	// Verify wires this module's variable claims onto body[bi] via
	// sys.AddVariable and returns an error for any precondition the module
	// checks. The escape module does not check that XUVFlux is populated.
	Verify(sys *System, bi int) error

	// CountHalts returns how many halt conditions this module contributes
	// for body[bi], so halt.go can preallocate its checker slice.
	CountHalts(b *Body) int

	// InitializeUpdate runs before each of the four RK4 stages (through
	// ModuleAux), before derivatives are evaluated, to recompute auxiliary quantities the derivative
	// functions will read this step (e.g. KTide, OxygenMixingRatio).
	InitializeUpdate(sys *System, bi int) error

	// AssignDerivatives is called once, from Verify, to decide which of
	// this module's candidate variables actually apply to body[bi] (the
	// source's pattern of claiming a variable only when some other field
	// is already nonzero at verify time, e.g. water/oxygen tracking only
	// if SurfaceWaterMass > 0 initially).
	AssignDerivatives(b *Body) []string

	// NullDerivatives returns the names this module would have claimed had
	// AssignDerivatives not excluded them. Nothing in this repository calls
	// it.
	NullDerivatives(b *Body) []string

	// BodyCopy deep-copies this module's owned fields from src into dst.
	// The dispatch matrix itself never calls it (RK4Step mutates bodies
	// in place through each Variable's Get/Set pair); it exists so a
	// caller building an ensemble or a scenario comparison can clone a
	// System without reaching into module internals.
	BodyCopy(dst, src *Body)

	// LogBody returns this module's per-body fields as alternating
	// key/value pairs; output.go turns them into snapshot columns and
	// log.go's LogBody into one logger line.
	LogBody(sys *System, bi int) []interface{}
}
