package domain

// RiskLevel is the overall risk classification of a findings set.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskAssessment is a stateless evaluation of aggregated findings.
// It is recomputed fresh on every call and never persisted.
type RiskAssessment struct {
	Level          RiskLevel `json:"level"`
	Score          int       `json:"score"`
	Factors        []string  `json:"factors"`
	TotalOpenPorts int       `json:"total_open_ports"`
	UniqueServices int       `json:"unique_services"`
}

// Priority ranks a recommended follow-up action.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight returns the sort weight of the priority, higher first.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Recommendation is a suggested follow-up action derived from findings.
type Recommendation struct {
	Priority         Priority `json:"priority"`
	Action           string   `json:"action"`
	Description      string   `json:"description"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	Difficulty       string   `json:"difficulty"`
	Tools            []string `json:"tools"`
}

// RiskWeights are the scoring heuristics of the risk engine. The values
// are tunable constants, not derived truths; defaults mirror the fixed
// tables the engine ships with.
type RiskWeights struct {
	HighRiskPortScore       int      `yaml:"high_risk_port_score"`
	BroadSurfaceScore       int      `yaml:"broad_surface_score"`
	BroadSurfaceThreshold   int      `yaml:"broad_surface_threshold"`
	UnencryptedServiceScore int      `yaml:"unencrypted_service_score"`
	HighRiskPorts           []uint16 `yaml:"high_risk_ports"`
	UnencryptedServices     []string `yaml:"unencrypted_services"`
}

// ApplyDefaults fills every unset field from the stock table, so a
// partial weights block cannot silently disable matching.
func (w *RiskWeights) ApplyDefaults() {
	def := DefaultRiskWeights()
	if w.HighRiskPortScore == 0 {
		w.HighRiskPortScore = def.HighRiskPortScore
	}
	if w.BroadSurfaceScore == 0 {
		w.BroadSurfaceScore = def.BroadSurfaceScore
	}
	if w.BroadSurfaceThreshold == 0 {
		w.BroadSurfaceThreshold = def.BroadSurfaceThreshold
	}
	if w.UnencryptedServiceScore == 0 {
		w.UnencryptedServiceScore = def.UnencryptedServiceScore
	}
	if len(w.HighRiskPorts) == 0 {
		w.HighRiskPorts = def.HighRiskPorts
	}
	if len(w.UnencryptedServices) == 0 {
		w.UnencryptedServices = def.UnencryptedServices
	}
}

// DefaultRiskWeights returns the stock scoring table.
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		HighRiskPortScore:       20,
		BroadSurfaceScore:       30,
		BroadSurfaceThreshold:   50,
		UnencryptedServiceScore: 15,
		HighRiskPorts:           []uint16{21, 23, 135, 139, 445, 1433, 3389},
		UnencryptedServices:     []string{"ftp", "telnet", "http", "smtp"},
	}
}
