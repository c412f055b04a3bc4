package vplanet

import "github.com/gonum/matrix/mat64"

// WaterLossModel selects which hydrodynamic-escape sub-model governs a
// body's surface-water loss rate. See modules/escape and spec.md §4.9.1.
type WaterLossModel uint8

const (
	LB15 WaterLossModel = iota
	LBExact
	Tian
)

// EscapeRegime records which branch of the escape derivative last fired,
// for logging and for the test suite's regime-consistency checks.
type EscapeRegime uint8

const (
	RegimeEnergyLimited EscapeRegime = iota
	RegimeDiffusionLimited
	RegimeNone
)

func (r EscapeRegime) String() string {
	switch r {
	case RegimeEnergyLimited:
		return "ENERGY_LIMITED"
	case RegimeDiffusionLimited:
		return "DIFFUSION_LIMITED"
	default:
		return "NONE"
	}
}

// StellarModel selects the tabulated-track family a star is evolved along.
// Only Baraffe is implemented (modules/stellar/track.go); the stellar
// module's option parser accepts only the name BARAFFE and returns an
// InputError for any other model name.
type StellarModel uint8

const (
	StellarBaraffe StellarModel = iota
	StellarNone
)

// WindModel selects the magnetic-braking XUV/wind law. See spec.md §4.10.1.
type WindModel uint8

const (
	WindReiners WindModel = iota
	WindRibas
)

// BrakingLaw selects the angular-momentum-loss prescription.
type BrakingLaw uint8

const (
	BrakeNone BrakingLaw = iota
	BrakeRM12
	BrakeSkumanich72
	BrakeMatt15
)

// XUVModel selects which stellar XUV-luminosity law the escape module
// reads F_XUV from. See spec.md §4.10.2, body policy field "XUV-model
// tag" — distinct from WindModel, which gates the RM12 braking law.
type XUVModel uint8

const (
	XUVConstant XUVModel = iota
	XUVRibas
	XUVReiners
)

// RadiusModel selects which planet-radius sub-model the escape module
// evaluates every step. See spec.md §4.9.2.
type RadiusModel uint8

const (
	RadiusLopez12 RadiusModel = iota
	RadiusSotin07
	RadiusProxCenB
	RadiusLehmer17
)

// Body is the flat per-body state record. Every module's fields live here
// directly, grouped by owning module, mirroring the teacher's flat
// Spacecraft/CelestialObject structs — this avoids an import cycle between
// the root package (which must define Module/Body/System) and
// modules/escape, modules/stellar (which both implement Module against
// *Body without importing each other). See SPEC_FULL.md §3.
type Body struct {
	Name string
	// IsStar is true for body 0 by system invariant; modules key off this
	// rather than a type switch.
	IsStar bool

	// --- generic orbital/physical state, read by GeneralAux (aux.go) ---
	Mass        float64 // grams
	Radius      float64 // cm
	SemiMajorAxis float64 // cm
	Eccentricity  float64
	MeanMotion    float64 // computed by GeneralAux, rad/s

	// --- modules/escape owned fields ---
	SurfaceWaterMass float64 // grams, RATE kind
	OxygenMass       float64 // grams, RATE kind
	OxygenMantleMass float64 // grams, RATE kind
	EnvelopeMass     float64 // grams, RATE kind

	WaterLossModel WaterLossModel
	RadiusModel    RadiusModel
	InstantO2Sink  bool
	HaltMinSurfaceWaterMass bool
	HaltEnvelopeGone        bool

	FlowTemp   float64 // K, exobase/thermospheric flow temperature
	XUVFlux    float64 // erg/s/cm^2 at the planet, user override or fallback
	XUVEfficiency float64 // epsilon_H2O; 0 means use the piecewise-cubic fit
	Albedo     float64
	XFrac      float64 // X_frac, fraction of planet radius the escaping flow occupies
	JeansTime  float64 // s, age at which hydrodynamic escape shuts off (user dJeansTime); <=0 means unset (no cutoff)
	Circumbinary bool // always gets KTide = 1 per spec.md §4.9.1

	// derived/cached by the escape module's aux pass (fnPropsAuxAtmEsc):
	KTide               float64
	OxygenMixingRatio   float64 // X_O
	CrossoverMass       float64
	SurfaceGravity      float64
	HDiffusionFluxLimit float64 // BDIFF-based diffusion-limited flux
	LastRegime          EscapeRegime
	RGDurationStart     float64 // -1 until the RG-limit latch first fires
	RocheWarned         bool    // one-shot K_tide override warning, atmesc.c bRocheMessage
	EnvelopeGoneWarned  bool    // one-shot "switched to Sotin07" message, atmesc.c bEnvelopeGoneMessage

	// --- modules/stellar owned fields ---
	StellarModel StellarModel
	WindModel    WindModel
	XUVModel     XUVModel
	BrakingLaw   BrakingLaw
	EvolveRG     bool

	Age             float64 // s, since formation
	Luminosity      float64 // erg/s
	Temperature     float64 // K, effective
	RotRate         float64 // rad/s
	RotPeriod       float64 // s (derived, kept in sync for output)
	RadiusOfGyration float64
	LostAngMom      float64 // RATE kind, cumulative |dJ/dt| bookkeeping

	// XUV-luminosity-law parameters (§4.10.2), read on the star by
	// modules/stellar's InitializeUpdate and consumed by modules/escape
	// through XUVLuminosity:
	XUVSatFraction float64 // f_sat: saturated XUV/bolometric luminosity ratio
	XUVSatAge      float64 // s, t_sat: age below which XUV output saturates (RIBAS)
	XUVBeta        float64 // decay exponent beyond t_sat (RIBAS)
	XUVLuminosity  float64 // erg/s, computed every InitializeUpdate from XUVModel
	LostEnergy      float64 // DERIVED kind, cumulative energy leaving the reservoir, sign positive outbound

	// scratch written by the stellar aux pass, read by its derivative
	// functions within the same substage:
	dRadiusDt float64
	dRgDt     float64

	// --- n-body admission (unused by the two reference modules but part
	// of the dispatch matrix's Kind vocabulary, spec.md §4.1) ---
	Position mat64.Vector
	Velocity mat64.Vector

	// vars is this body's slice of Variables, built once in Verify.
	vars []*Variable

	// sumsBuf is EvalBody's preallocated per-variable result buffer, sized
	// to len(vars) in Verify so the hot derivative pass never allocates
	// (spec.md §5/§9, SPEC_FULL.md §3's "preallocation happens once in
	// Verify" claim).
	sumsBuf []float64
}

// NewBody returns a Body with the defaults the teacher's NewEmptySC-style
// constructors use: zeroed physical state, sentinel RGDurationStart so the
// first-under-limit latch (spec.md §4.9.3) can detect "never yet observed".
func NewBody(name string) *Body {
	return &Body{
		Name:            name,
		RGDurationStart: -1,
		XFrac:           1,
	}
}

// Variables returns the body's dispatch-matrix row, built by Verify.
func (b *Body) Variables() []*Variable { return b.vars }
