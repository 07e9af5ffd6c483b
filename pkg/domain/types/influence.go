package types

// InfluenceStrength is the intensity of a risk to risk influence
type InfluenceStrength string

const (
	StrengthWeak     InfluenceStrength = "Weak"
	StrengthModerate InfluenceStrength = "Moderate"
	StrengthStrong   InfluenceStrength = "Strong"
	StrengthCritical InfluenceStrength = "Critical"
)

// InfluenceStrengths lists every known strength, weakest first
var InfluenceStrengths = []InfluenceStrength{
	StrengthWeak, StrengthModerate, StrengthStrong, StrengthCritical,
}

var strengthKeys = lookupKeys(InfluenceStrengths, nil)

// ParseInfluenceStrength decodes s, falling back to Moderate
func ParseInfluenceStrength(s string) InfluenceStrength {
	return decode("influence_strength", s, strengthKeys, StrengthModerate)
}

// Validate checks the strength is known
func (s InfluenceStrength) Validate() error {
	return validateKnown("influence strength", s, strengthKeys)
}

// Score is the ordinal value, 1 (Weak) to 4 (Critical). Unknown values score as Moderate.
func (s InfluenceStrength) Score() int {
	switch s {
	case StrengthWeak:
		return 1
	case StrengthStrong:
		return 3
	case StrengthCritical:
		return 4
	default:
		return 2
	}
}

// Weight is Score normalized to (0,1]
func (s InfluenceStrength) Weight() float64 {
	return float64(s.Score()) / 4.0
}

func (s InfluenceStrength) String() string {
	return string(s)
}

// ImpactLevel is the severity of a risk's impact on a TPO
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "Low"
	ImpactMedium   ImpactLevel = "Medium"
	ImpactHigh     ImpactLevel = "High"
	ImpactCritical ImpactLevel = "Critical"
)

var impactLevelKeys = lookupKeys([]ImpactLevel{ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical}, nil)

// ParseImpactLevel decodes s, falling back to Medium
func ParseImpactLevel(s string) ImpactLevel {
	return decode("impact_level", s, impactLevelKeys, ImpactMedium)
}

// Validate checks the impact level is known
func (l ImpactLevel) Validate() error {
	return validateKnown("impact level", l, impactLevelKeys)
}

// Score is the ordinal value, 1 (Low) to 4 (Critical). Unknown values score as Medium.
func (l ImpactLevel) Score() int {
	switch l {
	case ImpactLow:
		return 1
	case ImpactHigh:
		return 3
	case ImpactCritical:
		return 4
	default:
		return 2
	}
}

func (l ImpactLevel) String() string {
	return string(l)
}

// InfluenceCategory is derived from the levels at both ends of an influence
type InfluenceCategory string

const (
	InfluenceOperationalToBusiness    InfluenceCategory = "operational_to_business"
	InfluenceBusinessToBusiness       InfluenceCategory = "business_to_business"
	InfluenceOperationalToOperational InfluenceCategory = "operational_to_operational"
	InfluenceUnknown                  InfluenceCategory = "unknown"
)

// InfluenceCategoryOf returns the category of an influence from source to target
func InfluenceCategoryOf(source, target RiskLevel) InfluenceCategory {
	switch {
	case source == RiskLevelOperational && target == RiskLevelBusiness:
		return InfluenceOperationalToBusiness
	case source == RiskLevelBusiness && target == RiskLevelBusiness:
		return InfluenceBusinessToBusiness
	case source == RiskLevelOperational && target == RiskLevelOperational:
		return InfluenceOperationalToOperational
	default:
		return InfluenceUnknown
	}
}

func (c InfluenceCategory) String() string {
	return string(c)
}
