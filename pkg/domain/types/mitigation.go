package types

// MitigationID identifies a mitigation node
type MitigationID string

func (id MitigationID) String() string {
	return string(id)
}

// MitigationType describes where a mitigation comes from
type MitigationType string

const (
	MitigationTypeDedicated MitigationType = "Dedicated"
	MitigationTypeInherited MitigationType = "Inherited"
	MitigationTypeBaseline  MitigationType = "Baseline"
)

var mitigationTypeKeys = lookupKeys([]MitigationType{
	MitigationTypeDedicated, MitigationTypeInherited, MitigationTypeBaseline,
}, nil)

// ParseMitigationType decodes s, falling back to Dedicated
func ParseMitigationType(s string) MitigationType {
	return decode("mitigation_type", s, mitigationTypeKeys, MitigationTypeDedicated)
}

// Validate checks the type is known
func (t MitigationType) Validate() error {
	return validateKnown("mitigation type", t, mitigationTypeKeys)
}

func (t MitigationType) String() string {
	return string(t)
}

// MitigationStatus is the lifecycle state of a mitigation
type MitigationStatus string

const (
	MitigationStatusProposed    MitigationStatus = "Proposed"
	MitigationStatusInProgress  MitigationStatus = "InProgress"
	MitigationStatusImplemented MitigationStatus = "Implemented"
	MitigationStatusDeferred    MitigationStatus = "Deferred"
)

var mitigationStatusKeys = lookupKeys([]MitigationStatus{
	MitigationStatusProposed,
	MitigationStatusInProgress,
	MitigationStatusImplemented,
	MitigationStatusDeferred,
}, nil)

// ParseMitigationStatus decodes s ("In Progress" is accepted), falling back to Proposed
func ParseMitigationStatus(s string) MitigationStatus {
	return decode("mitigation_status", s, mitigationStatusKeys, MitigationStatusProposed)
}

// Validate checks the status is known
func (s MitigationStatus) Validate() error {
	return validateKnown("mitigation status", s, mitigationStatusKeys)
}

// IsImplemented reports whether the mitigation is in place
func (s MitigationStatus) IsImplemented() bool {
	return s == MitigationStatusImplemented
}

// IsPending reports whether the mitigation is planned but not in place
func (s MitigationStatus) IsPending() bool {
	return s == MitigationStatusProposed || s == MitigationStatusInProgress
}

func (s MitigationStatus) String() string {
	return string(s)
}

// Effectiveness is how much a mitigation reduces the exposure of a risk
type Effectiveness string

const (
	EffectivenessLow      Effectiveness = "Low"
	EffectivenessMedium   Effectiveness = "Medium"
	EffectivenessHigh     Effectiveness = "High"
	EffectivenessCritical Effectiveness = "Critical"
)

// Effectivenesses lists every known effectiveness, weakest first
var Effectivenesses = []Effectiveness{
	EffectivenessLow, EffectivenessMedium, EffectivenessHigh, EffectivenessCritical,
}

var effectivenessKeys = lookupKeys(Effectivenesses, nil)

// ParseEffectiveness decodes s, falling back to Medium
func ParseEffectiveness(s string) Effectiveness {
	return decode("effectiveness", s, effectivenessKeys, EffectivenessMedium)
}

// Validate checks the effectiveness is known
func (e Effectiveness) Validate() error {
	return validateKnown("effectiveness", e, effectivenessKeys)
}

// Score is the ordinal value, 1 (Low) to 4 (Critical). Unknown values score as Medium.
func (e Effectiveness) Score() int {
	switch e {
	case EffectivenessLow:
		return 1
	case EffectivenessHigh:
		return 3
	case EffectivenessCritical:
		return 4
	default:
		return 2
	}
}

// Reduction is the fraction of exposure removed by the mitigation
func (e Effectiveness) Reduction() float64 {
	switch e {
	case EffectivenessLow:
		return 0.3
	case EffectivenessHigh:
		return 0.7
	case EffectivenessCritical:
		return 0.9
	default:
		return 0.5
	}
}

func (e Effectiveness) String() string {
	return string(e)
}
