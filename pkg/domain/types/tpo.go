package types

// TPOID identifies a top program objective
type TPOID string

func (id TPOID) String() string {
	return string(id)
}

// TPOCluster groups objectives by the kind of efficiency they protect
type TPOCluster string

const (
	TPOClusterProductEfficiency    TPOCluster = "Product Efficiency"
	TPOClusterBusinessEfficiency   TPOCluster = "Business Efficiency"
	TPOClusterIndustrialEfficiency TPOCluster = "Industrial Efficiency"
	TPOClusterSustainability       TPOCluster = "Sustainability"
	TPOClusterSafety               TPOCluster = "Safety"
)

// TPOClusters lists every known cluster in display order
var TPOClusters = []TPOCluster{
	TPOClusterProductEfficiency,
	TPOClusterBusinessEfficiency,
	TPOClusterIndustrialEfficiency,
	TPOClusterSustainability,
	TPOClusterSafety,
}

var tpoClusterKeys = lookupKeys(TPOClusters, nil)

// ParseTPOCluster decodes s, falling back to Business Efficiency
func ParseTPOCluster(s string) TPOCluster {
	return decode("tpo_cluster", s, tpoClusterKeys, TPOClusterBusinessEfficiency)
}

// Validate checks the cluster is known
func (c TPOCluster) Validate() error {
	return validateKnown("tpo cluster", c, tpoClusterKeys)
}

func (c TPOCluster) String() string {
	return string(c)
}
