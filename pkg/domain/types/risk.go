package types

// RiskID identifies a risk node
type RiskID string

// String returns the string representation of RiskID
func (id RiskID) String() string {
	return string(id)
}

// RiskLevel is the tier of a risk in the hierarchy
type RiskLevel string

const (
	RiskLevelBusiness    RiskLevel = "Business"
	RiskLevelOperational RiskLevel = "Operational"
)

var riskLevelKeys = lookupKeys(
	[]RiskLevel{RiskLevelBusiness, RiskLevelOperational},
	// Older graphs labelled the upper tier "Strategic"
	map[string]RiskLevel{"Strategic": RiskLevelBusiness},
)

// ParseRiskLevel decodes s, falling back to Operational for unknown input
func ParseRiskLevel(s string) RiskLevel {
	return decode("risk_level", s, riskLevelKeys, RiskLevelOperational)
}

// Validate checks that the level is one of the two known tiers
func (l RiskLevel) Validate() error {
	return validateKnown("risk level", l, riskLevelKeys)
}

// IsBusiness reports whether l is the upper tier
func (l RiskLevel) IsBusiness() bool {
	return l == RiskLevelBusiness
}

// String returns the string representation of RiskLevel
func (l RiskLevel) String() string {
	return string(l)
}

// RiskStatus is the lifecycle state of a risk
type RiskStatus string

const (
	RiskStatusActive     RiskStatus = "Active"
	RiskStatusContingent RiskStatus = "Contingent"
	RiskStatusArchived   RiskStatus = "Archived"
)

var riskStatusKeys = lookupKeys([]RiskStatus{RiskStatusActive, RiskStatusContingent, RiskStatusArchived}, nil)

// ParseRiskStatus decodes s, falling back to Active
func ParseRiskStatus(s string) RiskStatus {
	return decode("risk_status", s, riskStatusKeys, RiskStatusActive)
}

// Validate checks the status is known
func (s RiskStatus) Validate() error {
	return validateKnown("risk status", s, riskStatusKeys)
}

func (s RiskStatus) String() string {
	return string(s)
}

// RiskOrigin tells whether a risk is program specific or inherited
type RiskOrigin string

const (
	RiskOriginNew    RiskOrigin = "New"
	RiskOriginLegacy RiskOrigin = "Legacy"
)

var riskOriginKeys = lookupKeys([]RiskOrigin{RiskOriginNew, RiskOriginLegacy}, nil)

// ParseRiskOrigin decodes s, falling back to New
func ParseRiskOrigin(s string) RiskOrigin {
	return decode("risk_origin", s, riskOriginKeys, RiskOriginNew)
}

// Validate checks the origin is known
func (o RiskOrigin) Validate() error {
	return validateKnown("risk origin", o, riskOriginKeys)
}

func (o RiskOrigin) String() string {
	return string(o)
}
