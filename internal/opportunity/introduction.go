package opportunity

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/network-intel/internal/config"
	"github.com/sells-group/network-intel/internal/graph"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/scoring"
)

// IntroductionDetector scans triangles: a broker strongly connected to two
// contacts who are not connected to each other, where the pair shows business
// fit.
type IntroductionDetector struct {
	cfg    config.DetectorConfig
	tables *scoring.Tables
}

// NewIntroductionDetector creates the triangle-scan detector.
func NewIntroductionDetector(cfg config.DetectorConfig, tables *scoring.Tables) *IntroductionDetector {
	return &IntroductionDetector{cfg: cfg, tables: tables}
}

func (d *IntroductionDetector) Name() string { return "introduction" }

func (d *IntroductionDetector) Detect(_ context.Context, snap *graph.Snapshot) ([]Candidate, error) {
	var out []Candidate
	seen := make(map[string]bool)

	for _, broker := range snap.Contacts() {
		neighbors := d.strongNeighbors(snap, broker.ID)
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				b := snap.Contact(neighbors[i])
				c := snap.Contact(neighbors[j])
				if b == nil || c == nil || snap.Connected(b.ID, c.ID) {
					continue
				}

				key := pairKey(b.ID, c.ID)
				if seen[key] {
					continue
				}

				confidence, evidence := d.fitScore(b, c)
				if confidence < d.cfg.IntroductionMinConfidence {
					continue
				}
				seen[key] = true

				out = append(out, d.candidate(broker, b, c, confidence, evidence))
			}
		}
	}

	return out, nil
}

// strongNeighbors returns the IDs connected to id by verified edges at or
// above the introduction strength floor, in stable edge order.
func (d *IntroductionDetector) strongNeighbors(snap *graph.Snapshot, id string) []string {
	var out []string
	for _, e := range snap.EdgesOf(id) {
		if e.Verified && e.Strength >= d.cfg.IntroductionMinStrength {
			out = append(out, e.Other(id))
		}
	}
	return out
}

// fitScore combines industry complementarity, role complementarity, a
// seniority-gap bonus, and a shared high-value bonus into one confidence.
func (d *IntroductionDetector) fitScore(b, c *model.Contact) (float64, []string) {
	var score float64
	var evidence []string

	if d.complementary(d.tables.IndustryComplements, b, c) {
		score += 0.3
		evidence = append(evidence, fmt.Sprintf("%s and %s work in complementary industries", b.FullName(), c.FullName()))
	}
	if d.complementary(d.tables.RoleComplements, b, c) {
		score += 0.3
		evidence = append(evidence, "complementary roles")
	}

	gap := math.Abs(d.tables.SeniorityScore(b.Position) - d.tables.SeniorityScore(c.Position))
	if gap >= 25 {
		score += 0.2
		evidence = append(evidence, "meaningful seniority gap suggests a mentoring or sponsorship angle")
	}

	if priorityOf(b) >= scoring.HighValuePriority && priorityOf(c) >= scoring.HighValuePriority {
		score += 0.2
		evidence = append(evidence, "both contacts rank in the top priority tier")
	}

	return math.Min(1, score), evidence
}

// complementary reports whether either contact's profile text matches a table
// key whose complement list matches the other contact's text.
func (d *IntroductionDetector) complementary(table map[string][]string, b, c *model.Contact) bool {
	bText := strings.ToLower(b.Company + " " + b.Position)
	cText := strings.ToLower(c.Company + " " + c.Position)

	check := func(x, y string) bool {
		for key, complements := range table {
			if !strings.Contains(x, key) {
				continue
			}
			for _, comp := range complements {
				if strings.Contains(y, comp) {
					return true
				}
			}
		}
		return false
	}
	return check(bText, cText) || check(cText, bText)
}

func (d *IntroductionDetector) candidate(broker, b, c *model.Contact, confidence float64, evidence []string) Candidate {
	impact := (priorityOf(b) + priorityOf(c)) / 2

	return Candidate{
		Category:   model.CategoryIntroduction,
		Type:       "warm_introduction",
		Title:      fmt.Sprintf("Introduce %s to %s", b.FullName(), c.FullName()),
		Confidence: confidence,
		Impact:     impact,
		Effort:     30,
		Urgency:    40 + confidence*30,
		Reasoning: model.Reasoning{
			Summary: fmt.Sprintf("%s is strongly connected to both %s and %s, who are not yet connected.",
				broker.FullName(), b.FullName(), c.FullName()),
			Evidence:          evidence,
			SuccessIndicators: []string{"introduction accepted", "follow-up meeting scheduled"},
		},
		Contacts: []string{b.ID, c.ID},
		Actions: []model.SuggestedAction{
			{
				Label:   fmt.Sprintf("Ask %s to introduce %s and %s", broker.FullName(), b.FullName(), c.FullName()),
				Channel: "email",
				Message: fmt.Sprintf("Hi %s, I think %s and %s would benefit from knowing each other. Would you be open to making an introduction?", broker.FirstName, b.FullName(), c.FullName()),
			},
		},
	}
}

func priorityOf(c *model.Contact) float64 {
	if c.Scoring == nil {
		return 50
	}
	return c.Scoring.Priority
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
