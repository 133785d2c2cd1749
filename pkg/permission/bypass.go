package permission

// BypassValidation is the outcome of checking the bypass flag pair.
type BypassValidation int

const (
	// BypassDisabled means bypass was not requested.
	BypassDisabled BypassValidation = iota
	// BypassEnabled means bypass was requested and allowed.
	BypassEnabled
	// BypassNotAllowed means bypass was requested without the allow flag.
	BypassNotAllowed
)

// BypassErrorMessage is printed when bypass is requested without the
// allow flag.
const BypassErrorMessage = "Error: --dangerously-skip-permissions requires --allow-dangerously-skip-permissions to be set.\n" +
	"This is a safety measure. Only use this in sandboxed environments with no internet access."

// Bypass validates the --dangerously-skip-permissions flag pair. The
// skip flag requires the allow flag as a safety measure.
type Bypass struct {
	allowed   bool
	requested bool
}

// NewBypass builds a bypass handler from the two flag values.
func NewBypass(allowed, requested bool) Bypass {
	return Bypass{allowed: allowed, requested: requested}
}

// Validate classifies the flag combination.
func (b Bypass) Validate() BypassValidation {
	switch {
	case b.requested && b.allowed:
		return BypassEnabled
	case b.requested:
		return BypassNotAllowed
	default:
		return BypassDisabled
	}
}

// Active reports whether bypass is enabled and allowed.
func (b Bypass) Active() bool { return b.Validate() == BypassEnabled }

// NotAllowed reports whether bypass was requested without permission.
func (b Bypass) NotAllowed() bool { return b.Validate() == BypassNotAllowed }
