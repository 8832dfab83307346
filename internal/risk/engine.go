// Package risk scores aggregated scan findings and derives follow-up
// recommendations. The engine is stateless: every call re-reads the
// results it is given and produces a fresh assessment.
package risk

import (
	"fmt"
	"sort"
	"strings"

	"bytemomo/scylla/internal/domain"
)

// Engine evaluates findings against a scoring table.
type Engine struct {
	weights domain.RiskWeights
}

// NewEngine builds an engine. Unset weight fields fall back per-field
// to the stock table.
func NewEngine(weights domain.RiskWeights) *Engine {
	weights.ApplyDefaults()
	return &Engine{weights: weights}
}

// Assess scores the aggregated findings of the given results. Results
// that are not completed contribute nothing. The reported score is
// clamped to [0,100], but the level is taken from the raw sum so a
// saturated score still distinguishes high from critical.
func (e *Engine) Assess(results []domain.ScanResult) domain.RiskAssessment {
	open, services := aggregate(results)

	raw := 0
	var factors []string

	for _, p := range open {
		if e.isHighRiskPort(p.Port) {
			raw += e.weights.HighRiskPortScore
			factors = append(factors, fmt.Sprintf("high-risk port %d/%s open", p.Port, p.Protocol))
		}
	}

	if len(open) > e.weights.BroadSurfaceThreshold {
		raw += e.weights.BroadSurfaceScore
		factors = append(factors, fmt.Sprintf("broad attack surface: %d open ports", len(open)))
	}

	for _, svc := range services {
		if e.isUnencrypted(svc) {
			raw += e.weights.UnencryptedServiceScore
			factors = append(factors, fmt.Sprintf("unencrypted service %s exposed", svc))
		}
	}

	score := raw
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return domain.RiskAssessment{
		Level:          levelFor(raw),
		Score:          score,
		Factors:        factors,
		TotalOpenPorts: len(open),
		UniqueServices: len(services),
	}
}

// AnalyzeBatch scores the batch and derives its recommendations in one
// call.
func (e *Engine) AnalyzeBatch(results []domain.ScanResult) (domain.RiskAssessment, []domain.Recommendation) {
	return e.Assess(results), e.Recommend(results)
}

// Recommend derives follow-up actions from the aggregated findings,
// ordered by priority. Actions of equal priority keep their derivation
// order.
func (e *Engine) Recommend(results []domain.ScanResult) []domain.Recommendation {
	open, services := aggregate(results)

	var recs []domain.Recommendation

	if matched := matchServices(services, []string{"ftp", "telnet", "ssh", "smtp", "http", "https", "smb", "rdp", "microsoft-ds", "ms-wbt-server"}); len(matched) > 0 {
		recs = append(recs, domain.Recommendation{
			Priority:         domain.PriorityHigh,
			Action:           "service enumeration",
			Description:      fmt.Sprintf("Enumerate exposed services in depth: %s", strings.Join(matched, ", ")),
			EstimatedMinutes: 30,
			Difficulty:       "medium",
			Tools:            []string{"nmap", "enum4linux", "nikto"},
		})
	}

	if ports := matchPorts(open, []uint16{80, 443, 8080, 8443}); len(ports) > 0 {
		recs = append(recs, domain.Recommendation{
			Priority:         domain.PriorityMedium,
			Action:           "web application testing",
			Description:      fmt.Sprintf("Probe web surfaces on ports %s for common weaknesses", joinPorts(ports)),
			EstimatedMinutes: 60,
			Difficulty:       "medium",
			Tools:            []string{"burp suite", "nikto", "dirb"},
		})
	}

	if matched := matchServices(services, []string{"mysql", "postgresql", "ms-sql-s", "oracle", "mongodb", "redis"}); len(matched) > 0 {
		recs = append(recs, domain.Recommendation{
			Priority:         domain.PriorityHigh,
			Action:           "database assessment",
			Description:      fmt.Sprintf("Assess database exposure and authentication: %s", strings.Join(matched, ", ")),
			EstimatedMinutes: 45,
			Difficulty:       "advanced",
			Tools:            []string{"sqlmap", "nmap"},
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Weight() > recs[j].Priority.Weight()
	})
	return recs
}

// levelFor maps a raw (pre-clamp) score to a level.
func levelFor(raw int) domain.RiskLevel {
	switch {
	case raw >= 100:
		return domain.RiskCritical
	case raw >= 70:
		return domain.RiskHigh
	case raw >= 40:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// aggregate collects open ports and distinct service names from every
// completed result, in first-seen order.
func aggregate(results []domain.ScanResult) ([]domain.PortFinding, []string) {
	var open []domain.PortFinding
	var services []string
	seen := make(map[string]bool)

	for _, res := range results {
		if res.Status != domain.StatusCompleted {
			continue
		}
		open = append(open, res.Findings.OpenPorts()...)
		for _, svc := range res.Findings.Services {
			name := strings.ToLower(svc.Service)
			if name != "" && !seen[name] {
				seen[name] = true
				services = append(services, name)
			}
		}
	}
	return open, services
}

func (e *Engine) isHighRiskPort(port uint16) bool {
	for _, p := range e.weights.HighRiskPorts {
		if p == port {
			return true
		}
	}
	return false
}

func (e *Engine) isUnencrypted(service string) bool {
	for _, s := range e.weights.UnencryptedServices {
		if strings.EqualFold(s, service) {
			return true
		}
	}
	return false
}

func matchServices(services, wanted []string) []string {
	var matched []string
	for _, svc := range services {
		for _, w := range wanted {
			if svc == w {
				matched = append(matched, svc)
				break
			}
		}
	}
	return matched
}

func matchPorts(open []domain.PortFinding, wanted []uint16) []uint16 {
	seen := make(map[uint16]bool)
	var matched []uint16
	for _, p := range open {
		for _, w := range wanted {
			if p.Port == w && !seen[w] {
				seen[w] = true
				matched = append(matched, w)
			}
		}
	}
	return matched
}

func joinPorts(ports []uint16) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
