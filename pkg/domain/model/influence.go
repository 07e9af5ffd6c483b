package model

import "github.com/secmon-lab/riskmap/pkg/domain/types"

// NodeType distinguishes the two kinds of nodes an influence analysis visits
type NodeType string

const (
	NodeTypeRisk NodeType = "Risk"
	NodeTypeTPO  NodeType = "TPO"
)

// Edge types of the influence network
const (
	EdgeInfluences = "INFLUENCES"
	EdgeImpactsTPO = "IMPACTS_TPO"
)

// PropagationPath is one path from a propagator to a reached TPO
type PropagationPath struct {
	Path  []string `json:"path"`
	Score float64  `json:"score"`
}

// Propagator is a risk ranked by its downstream reach
type Propagator struct {
	ID           types.RiskID      `json:"id"`
	Name         string            `json:"name"`
	Level        types.RiskLevel   `json:"level"`
	Score        float64           `json:"score"`
	TPOsReached  int               `json:"tpos_reached"`
	RisksReached int               `json:"risks_reached"`
	TPOIDs       []types.TPOID     `json:"tpo_ids"`
	PathsToTPO   []PropagationPath `json:"paths_to_tpo"`
}

// ConvergencePoint is a risk or TPO ranked by the upstream pressure it receives
type ConvergencePoint struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Level             string   `json:"level"`
	NodeType          NodeType `json:"node_type"`
	Score             float64  `json:"score"`
	SourceCount       int      `json:"source_count"`
	PathCount         int      `json:"path_count"`
	IsHighConvergence bool     `json:"is_high_convergence"`
}

// PathNode is one hop of a critical path
type PathNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// PathEdge is the edge leading to the next hop of a critical path
type PathEdge struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// CriticalPath is a chain from an Operational risk to a TPO
type CriticalPath struct {
	Path     []PathNode `json:"path"`
	Edges    []PathEdge `json:"edges"`
	Strength float64    `json:"strength"`
	Length   int        `json:"length"`
}

// Bottleneck is a risk that many risk to TPO paths go through
type Bottleneck struct {
	ID         types.RiskID    `json:"id"`
	Name       string          `json:"name"`
	Level      types.RiskLevel `json:"level"`
	PathCount  int             `json:"path_count"`
	TotalPaths int             `json:"total_paths"`
	Percentage float64         `json:"percentage"`
}

// LevelCounts counts cluster members per tier
type LevelCounts struct {
	Business    int `json:"business"`
	Operational int `json:"operational"`
}

// RiskCluster is a connected group of mutually influencing risks
type RiskCluster struct {
	Nodes           []types.RiskID `json:"nodes"`
	NodeNames       []string       `json:"node_names"`
	Size            int            `json:"size"`
	InternalEdges   int            `json:"internal_edges"`
	Density         float64        `json:"density"`
	PrimaryCategory string         `json:"primary_category"`
	Levels          LevelCounts    `json:"levels"`
}

// CountByKey is one row of a breakdown table
type CountByKey struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// NetworkStats describes the shape of the analyzed network
type NetworkStats struct {
	TotalRisks           int          `json:"total_risks"`
	BusinessRisks        int          `json:"business_risks"`
	OperationalRisks     int          `json:"operational_risks"`
	TotalTPOs            int          `json:"total_tpos"`
	TotalInfluences      int          `json:"total_influences"`
	TotalTPOImpacts      int          `json:"total_tpo_impacts"`
	SkippedEdges         int          `json:"skipped_edges"`
	InfluencesByCategory []CountByKey `json:"influences_by_category"`
	InfluencesByStrength []CountByKey `json:"influences_by_strength"`
}

// InfluenceResult is the output of the influence network analyzer
type InfluenceResult struct {
	TopPropagators    []Propagator       `json:"top_propagators"`
	ConvergencePoints []ConvergencePoint `json:"convergence_points"`
	CriticalPaths     []CriticalPath     `json:"critical_paths"`
	Bottlenecks       []Bottleneck       `json:"bottlenecks"`
	RiskClusters      []RiskCluster      `json:"risk_clusters"`
	Stats             NetworkStats       `json:"stats"`
}

// PropagatorIDs returns ids of the top propagators in rank order
func (x *InfluenceResult) PropagatorIDs() []types.RiskID {
	ids := make([]types.RiskID, 0, len(x.TopPropagators))
	for _, p := range x.TopPropagators {
		ids = append(ids, p.ID)
	}
	return ids
}

// ConvergenceRiskIDs returns ids of convergence points that are risks
func (x *InfluenceResult) ConvergenceRiskIDs() []types.RiskID {
	var ids []types.RiskID
	for _, c := range x.ConvergencePoints {
		if c.NodeType == NodeTypeRisk {
			ids = append(ids, types.RiskID(c.ID))
		}
	}
	return ids
}

// BottleneckIDs returns ids of bottleneck risks in rank order
func (x *InfluenceResult) BottleneckIDs() []types.RiskID {
	ids := make([]types.RiskID, 0, len(x.Bottlenecks))
	for _, b := range x.Bottlenecks {
		ids = append(ids, b.ID)
	}
	return ids
}

// HighPriorityIDs is the union of propagators, risk convergence points and
// bottlenecks, without duplicates, in that order.
func (x *InfluenceResult) HighPriorityIDs() []types.RiskID {
	seen := make(map[types.RiskID]struct{})
	var ids []types.RiskID
	for _, group := range [][]types.RiskID{x.PropagatorIDs(), x.ConvergenceRiskIDs(), x.BottleneckIDs()} {
		for _, id := range group {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
