package advisory

import (
	"encoding/json"
	"fmt"
	"strings"
)

const suggestSystemPrompt = `You are a security analyst rating reported threats.
Rate the threat on a 1-5 scale: 5 Critical (immediate action required),
4 High (address within 24 hours), 3 Medium (address within a week),
2 Low (address when possible), 1 Informational (no immediate action).
Respond with a JSON object: {"level": <1-5>, "rationale": "<one or two sentences>"}.`

const sampleSystemPrompt = `You generate realistic example records for a threat
monitoring system used in demos. Statuses are Potential, Active or Resolved.
Categories must be drawn from: Personnel / Human Life, Environment, IT Services,
Physical Assets, Sensitive Data, Operational Continuity, General Security.
Levels are integers 1-5. Respond with a JSON object:
{"threats": [{"name": "...", "description": "...", "status": "...",
"categories": ["..."], "level": <1-5>}]}.`

const summarySystemPrompt = `You are a security analyst reviewing an
organisation's full threat register. Write a short narrative security-posture
assessment. Respond with a JSON object:
{"analysis": "<two or three paragraphs separated by \n>",
"patterns": ["..."], "anomalies": ["..."], "recommendations": ["..."]}.`

func suggestUserPrompt(a Assessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Threat name: %s\n", a.Name)
	fmt.Fprintf(&b, "Description: %s\n", a.Description)
	if a.Status != "" {
		fmt.Fprintf(&b, "Reported status: %s\n", a.Status)
	}
	if len(a.Categories) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(a.Categories, ", "))
	}
	b.WriteString("Rate this threat.")
	return b.String()
}

func sampleUserPrompt(n int) string {
	return fmt.Sprintf("Generate %d varied example threats.", n)
}

func summaryUserPrompt(digests []ThreatDigest) string {
	// The register is small by design; sending it whole keeps the prompt simple.
	data, err := json.Marshal(digests)
	if err != nil {
		data = []byte("[]")
	}
	return "Current threat register as JSON:\n" + string(data) +
		"\nSummarise the security posture, notable patterns, anomalies and recommendations."
}
