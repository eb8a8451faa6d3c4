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

// archetype is one business-opportunity pattern matched against a contact's
// profile text. A contact may match several archetypes independently.
type archetype struct {
	typ      string
	label    string
	keywords []string
	roles    []string

	// minSeniority gates archetypes that only make sense for senior people.
	minSeniority float64

	impact  float64
	effort  float64
	urgency float64
}

// BusinessMatchDetector evaluates every contact against ten opportunity
// archetypes using keyword and role heuristics.
type BusinessMatchDetector struct {
	cfg        config.DetectorConfig
	tables     *scoring.Tables
	archetypes []archetype
}

// NewBusinessMatchDetector creates the archetype-matching detector.
func NewBusinessMatchDetector(cfg config.DetectorConfig, tables *scoring.Tables) *BusinessMatchDetector {
	return &BusinessMatchDetector{
		cfg:    cfg,
		tables: tables,
		archetypes: []archetype{
			{
				typ: "client_prospect", label: "Potential client",
				keywords: tables.BuyerKeywords,
				roles:    []string{"procurement", "operations", "ceo", "owner", "founder"},
				impact:   85, effort: 50, urgency: 65,
			},
			{
				typ: "partnership", label: "Partnership opportunity",
				keywords: []string{"partner", "alliance", "channel", "integration", "ecosystem"},
				roles:    []string{"partnerships", "business development", "alliances"},
				impact:   75, effort: 55, urgency: 55,
			},
			{
				typ: "vendor", label: "Potential vendor",
				keywords: tables.SellerKeywords,
				roles:    []string{"sales", "account", "solutions"},
				impact:   45, effort: 30, urgency: 40,
			},
			{
				typ: "investment", label: "Investment connection",
				keywords: []string{"venture", "capital", "fund", "investor", "angel", "equity"},
				roles:    []string{"investor", "partner", "principal"},
				impact:   80, effort: 60, urgency: 50,
			},
			{
				typ: "job_referral", label: "Referral opportunity",
				keywords: []string{"hiring", "recruiting", "talent", "opening", "headcount"},
				roles:    []string{"recruiter", "talent", "people", "hr"},
				impact:   50, effort: 25, urgency: 70,
			},
			{
				typ: "knowledge_exchange", label: "Knowledge exchange",
				keywords: []string{"research", "expert", "specialist", "phd", "author"},
				roles:    []string{"scientist", "researcher", "professor", "analyst"},
				impact:   40, effort: 20, urgency: 35,
			},
			{
				typ: "collaboration", label: "Collaboration opportunity",
				keywords: []string{"project", "open source", "community", "initiative", "cofounder"},
				roles:    []string{"engineer", "designer", "product", "founder"},
				impact:   55, effort: 45, urgency: 45,
			},
			{
				typ: "advisory", label: "Advisory candidate",
				keywords:     []string{"advisor", "advisory", "consultant", "strategy"},
				roles:        []string{"advisor", "consultant"},
				minSeniority: 70,
				impact:       65, effort: 35, urgency: 40,
			},
			{
				typ: "board", label: "Board candidate",
				keywords:     []string{"board", "director", "governance", "trustee"},
				roles:        []string{"board member", "chair", "trustee"},
				minSeniority: 85,
				impact:       70, effort: 65, urgency: 30,
			},
			{
				typ: "speaking", label: "Speaking opportunity",
				keywords:     []string{"speaker", "keynote", "conference", "podcast", "panel"},
				roles:        []string{"evangelist", "advocate", "speaker"},
				minSeniority: 70,
				impact:       45, effort: 30, urgency: 55,
			},
		},
	}
}

func (d *BusinessMatchDetector) Name() string { return "business_match" }

func (d *BusinessMatchDetector) Detect(_ context.Context, snap *graph.Snapshot) ([]Candidate, error) {
	var out []Candidate
	for _, contact := range snap.Contacts() {
		for i := range d.archetypes {
			if c, ok := d.match(contact, &d.archetypes[i]); ok {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// match scores one contact against one archetype. Keyword hits weigh less
// than role hits; seniority-gated archetypes require a senior title.
func (d *BusinessMatchDetector) match(contact *model.Contact, a *archetype) (Candidate, bool) {
	seniority := d.tables.SeniorityScore(contact.Position)
	if a.minSeniority > 0 && seniority < a.minSeniority {
		return Candidate{}, false
	}

	text := contact.Company + " " + contact.Position
	position := strings.ToLower(contact.Position)

	var confidence float64
	var evidence []string

	for _, hit := range scoring.MatchKeywords(a.keywords, text) {
		confidence += 0.2
		evidence = append(evidence, "profile mentions "+hit)
	}
	for _, role := range a.roles {
		if strings.Contains(position, role) {
			confidence += 0.3
			evidence = append(evidence, "role matches "+role)
			break
		}
	}

	confidence = math.Min(1, confidence)
	if confidence < d.cfg.BusinessMatchMinConfidence {
		return Candidate{}, false
	}

	return Candidate{
		Category:   model.CategoryBusinessMatch,
		Type:       a.typ,
		Title:      fmt.Sprintf("%s: %s", a.label, contact.FullName()),
		Confidence: confidence,
		Impact:     a.impact,
		Effort:     a.effort,
		Urgency:    a.urgency,
		Reasoning: model.Reasoning{
			Summary:           fmt.Sprintf("%s at %s fits the %s pattern.", contact.FullName(), contact.Company, strings.ToLower(a.label)),
			Evidence:          evidence,
			SuccessIndicators: []string{"conversation started", "concrete next step agreed"},
		},
		Contacts: []string{contact.ID},
		Actions: []model.SuggestedAction{
			{
				Label:   fmt.Sprintf("Reach out to %s about a %s conversation", contact.FullName(), strings.ToLower(a.label)),
				Channel: d.tables.ChannelFor(contact.RelationshipKind),
			},
		},
	}, true
}
