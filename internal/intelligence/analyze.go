package intelligence

import (
	"fmt"
	"strings"

	"bytemomo/scylla/internal/domain"
)

// systemPrompts select the model's role by context tag. Unknown tags
// fall back to the general analyst prompt.
var systemPrompts = map[string]string{
	"recon_analysis": `You are a network security analyst reviewing authorized reconnaissance results.

Your reports must be:
- Clear and step-by-step, with consistent terminology
- Structured: brief summary first, then detailed observations as bullet points
- Explicit about warnings for risky follow-up activity
- Closed with concrete next steps

Only discuss the findings you are given. Never invent hosts, ports, or services.`,

	"vulnerability_analysis": `You are a cybersecurity vulnerability analyst specializing in clear, actionable reporting.

Analyze findings with:
- Clear severity context
- Step-by-step remediation instructions
- Business impact explanations
- Verification steps

Present findings in a structured, easy-to-follow format. Only discuss the findings you are given.`,
}

const defaultContextTag = "recon_analysis"

// findingsLimit caps how many findings enter the prompt so large
// batches cannot overflow the model's context.
const findingsLimit = 20

// buildFindingsPrompt renders the batch outcome for the model. The
// deterministic assessment is quoted verbatim as context.
func buildFindingsPrompt(results []domain.ScanResult, assessment domain.RiskAssessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Risk assessment (computed, do not re-score): level=%s score=%d open_ports=%d unique_services=%d\n",
		assessment.Level, assessment.Score, assessment.TotalOpenPorts, assessment.UniqueServices)
	for _, f := range assessment.Factors {
		fmt.Fprintf(&b, "- factor: %s\n", f)
	}

	b.WriteString("\nFindings:\n")
	count := 0
	for _, res := range results {
		if res.Status != domain.StatusCompleted {
			fmt.Fprintf(&b, "- target %s: scan failed (%s)\n", res.Target, strings.Join(res.Errors, "; "))
			continue
		}
		for _, p := range res.Findings.Ports {
			if count >= findingsLimit {
				break
			}
			fmt.Fprintf(&b, "- %s port %d/%s %s", res.Target, p.Port, p.Protocol, p.State)
			if p.Service != "" {
				fmt.Fprintf(&b, " service=%s", p.Service)
			}
			if p.Product != "" {
				fmt.Fprintf(&b, " product=%s %s", p.Product, p.Version)
			}
			b.WriteString("\n")
			count++
		}
		for _, h := range res.Findings.Hosts {
			if count >= findingsLimit {
				break
			}
			fmt.Fprintf(&b, "- host %s %s\n", h.IP, h.Status)
			count++
		}
	}
	if count == 0 {
		b.WriteString("- no findings\n")
	}

	b.WriteString("\nWrite the analysis: summary, observations, warnings, next steps.")
	return b.String()
}

var (
	highConfidenceMarkers = []string{"definitely", "certainly", "always", "proven", "established"}
	lowConfidenceMarkers  = []string{"might", "possibly", "unclear", "depends", "varies"}
	warningMarkers        = []string{"warning", "caution", "danger", "risk", "careful", "legal"}
	nextStepMarkers       = []string{"next", "then", "after", "following", "step"}
)

// analyzeText extracts structure from free-form model output:
// confidence from hedging language, warnings and next steps from
// marker words, key points from bullet and numbered lines.
func analyzeText(text string) *Analysis {
	analysis := &Analysis{
		Text:       text,
		Confidence: ConfidenceMedium,
	}

	lower := strings.ToLower(text)
	if containsAny(lower, highConfidenceMarkers) {
		analysis.Confidence = ConfidenceHigh
	} else if containsAny(lower, lowConfidenceMarkers) {
		analysis.Confidence = ConfidenceLow
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lowerLine := strings.ToLower(trimmed)

		if containsAny(lowerLine, warningMarkers) {
			analysis.Warnings = append(analysis.Warnings, trimmed)
		}
		if isBullet(trimmed) {
			analysis.KeyPoints = append(analysis.KeyPoints, trimmed)
		}
		if containsAny(lowerLine, nextStepMarkers) {
			analysis.NextSteps = append(analysis.NextSteps, trimmed)
		}
	}
	return analysis
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func isBullet(line string) bool {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•") {
		return true
	}
	if len(line) >= 2 && line[0] >= '0' && line[0] <= '9' && strings.Contains(line[:min(3, len(line))], ".") {
		return true
	}
	return false
}
