package scoring

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/network-intel/internal/config"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/store"
)

// HighValuePriority is the priority score at or above which a contact counts
// as high value for the mutual-connection factor.
const HighValuePriority = 70

// defaultNetworkPosition is the flat score applied when no graph-analytics
// record exists for a contact.
const defaultNetworkPosition = 20

// Engine computes the six sub-scores and three composite scores for contacts.
// Same inputs always produce the same outputs; the only time dependence is
// the injected clock used for recency deltas.
type Engine struct {
	st     store.Store
	cfg    config.ScoringConfig
	batch  config.BatchConfig
	tables *Tables
	now    func() time.Time
}

// NewEngine creates a scoring engine.
func NewEngine(st store.Store, cfg config.ScoringConfig, batch config.BatchConfig, tables *Tables) *Engine {
	return &Engine{st: st, cfg: cfg, batch: batch, tables: tables, now: time.Now}
}

// WithClock overrides the engine clock; used in tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Input carries everything needed to score one contact.
type Input struct {
	Contact   *model.Contact
	Edges     []model.Edge // confirmed edges touching the contact
	Analytics *model.NetworkAnalytics
	Outreach  []model.OutreachRecord
	Campaigns []model.CampaignRecord
	Goals     []string
	HighValue map[string]bool // contact IDs currently in the top tier
}

// Score computes the full scoring record for one contact. Pure given Input
// and the engine clock.
func (e *Engine) Score(in Input) *model.ContactScoring {
	now := e.now().UTC()

	indicators, flags := e.scoreOpportunityIndicators(in, now)

	factors := model.ScoreFactors{
		NetworkPosition:       e.scoreNetworkPosition(in.Analytics),
		RelationshipStrength:  e.scoreRelationshipStrength(in, now),
		ProfessionalRelevance: e.scoreProfessionalRelevance(in),
		MutualConnections:     e.scoreMutualConnections(in),
		EngagementPatterns:    e.scoreEngagementPatterns(in),
		OpportunityIndicators: indicators,
	}

	return &model.ContactScoring{
		Priority:       composite(factors, e.cfg.PriorityWeights),
		Opportunity:    composite(factors, e.cfg.OpportunityWeights),
		StrategicValue: composite(factors, e.cfg.StrategicWeights),
		Factors:        factors,
		Flags:          flags,
		ScoredAt:       now,
	}
}

// ScoreContact loads a contact's inputs from the store, scores it, and
// persists the result.
func (e *Engine) ScoreContact(ctx context.Context, tenantID, contactID string, goals []string) (*model.ContactScoring, error) {
	in, err := e.loadInput(ctx, tenantID, contactID, goals, nil)
	if err != nil {
		return nil, err
	}

	scoring := e.Score(in)

	if err := e.st.UpdateContactScores(ctx, tenantID, contactID, scoring); err != nil {
		return nil, eris.Wrapf(err, "scoring: persist scores %s", contactID)
	}

	zap.L().Info("scoring: scored contact",
		zap.String("contact_id", contactID),
		zap.Float64("priority", scoring.Priority),
		zap.Float64("opportunity", scoring.Opportunity),
		zap.Float64("strategic_value", scoring.StrategicValue),
	)

	return scoring, nil
}

// loadInput gathers all store-side inputs for one contact. highValue may be
// supplied by a batch caller to avoid reloading the tenant's contacts per item.
func (e *Engine) loadInput(ctx context.Context, tenantID, contactID string, goals []string, highValue map[string]bool) (Input, error) {
	contact, err := e.st.GetContact(ctx, tenantID, contactID)
	if err != nil {
		return Input{}, err
	}

	edges, err := e.st.ListEdges(ctx, tenantID, []string{contactID}, 0)
	if err != nil {
		return Input{}, eris.Wrapf(err, "scoring: load edges %s", contactID)
	}

	analytics, err := e.st.GetNetworkAnalytics(ctx, contactID)
	if err != nil {
		return Input{}, eris.Wrapf(err, "scoring: load analytics %s", contactID)
	}

	outreach, err := e.st.ListOutreach(ctx, contactID)
	if err != nil {
		return Input{}, eris.Wrapf(err, "scoring: load outreach %s", contactID)
	}

	campaigns, err := e.st.ListCampaigns(ctx, contactID)
	if err != nil {
		return Input{}, eris.Wrapf(err, "scoring: load campaigns %s", contactID)
	}

	if highValue == nil {
		highValue, err = e.highValueSet(ctx, tenantID)
		if err != nil {
			return Input{}, err
		}
	}

	return Input{
		Contact:   contact,
		Edges:     edges,
		Analytics: analytics,
		Outreach:  outreach,
		Campaigns: campaigns,
		Goals:     goals,
		HighValue: highValue,
	}, nil
}

// highValueSet returns the IDs of contacts currently scored in the top tier.
func (e *Engine) highValueSet(ctx context.Context, tenantID string) (map[string]bool, error) {
	contacts, err := e.st.ListContacts(ctx, tenantID, store.ContactFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "scoring: load high-value set")
	}
	set := make(map[string]bool)
	for i := range contacts {
		if contacts[i].Scoring != nil && contacts[i].Scoring.Priority >= HighValuePriority {
			set[contacts[i].ID] = true
		}
	}
	return set, nil
}

// scoreNetworkPosition blends influence, log-scaled connection count, and
// betweenness centrality. Missing analytics yields the documented flat default.
func (e *Engine) scoreNetworkPosition(na *model.NetworkAnalytics) float64 {
	if na == nil {
		return defaultNetworkPosition
	}

	influence := clamp100(na.InfluenceScore * 100)
	connections := clamp100(math.Log1p(float64(na.ConnectionCount)) * 18)
	betweenness := clamp100(na.BetweennessCentrality * 100)

	return clamp100(influence*0.4 + connections*0.35 + betweenness*0.25)
}

// scoreRelationshipStrength blends contact recency, outreach frequency, and
// the relationship-kind base strength.
func (e *Engine) scoreRelationshipStrength(in Input, now time.Time) float64 {
	decayDays := float64(e.cfg.RecencyDecayDays)
	if decayDays <= 0 {
		decayDays = 150
	}

	var recency float64
	if in.Contact.LastContactedAt != nil {
		days := now.Sub(*in.Contact.LastContactedAt).Hours() / 24
		recency = clamp100(100 * (1 - days/decayDays))
	}

	var frequency float64
	if len(in.Outreach) > 0 {
		months := now.Sub(in.Contact.CreatedAt).Hours() / 24 / 30
		if months < 1 {
			months = 1
		}
		perMonth := float64(len(in.Outreach)) / months
		frequency = clamp100(perMonth * 50)
	}

	kindBase := e.tables.KindStrengthFor(in.Contact.RelationshipKind)

	return clamp100(recency*0.4 + frequency*0.25 + kindBase*0.35)
}

// scoreProfessionalRelevance combines industry-keyword alignment, title
// seniority, and a company-size heuristic.
func (e *Engine) scoreProfessionalRelevance(in Input) float64 {
	text := in.Contact.Company + " " + in.Contact.Position

	var keywordPoints float64
	for _, hit := range MatchKeywords(e.tables.IndustryKeywords, text) {
		keywordPoints += 15
		// A hit that also appears in a user goal is worth more.
		if len(MatchKeywords([]string{hit}, in.Goals...)) > 0 {
			keywordPoints += 10
		}
	}

	seniority := e.tables.SeniorityScore(in.Contact.Position)

	var size float64 = 50
	if hits := bestTableScore(e.tables.CompanySizeKeywords, in.Contact.Company); hits > 0 {
		size = hits
	}

	return clamp100(clamp100(keywordPoints)*0.4 + seniority*0.4 + size*0.2)
}

// scoreMutualConnections log-scales the contact's shared-edge count, weighted
// by the fraction of those edges touching high-value contacts.
func (e *Engine) scoreMutualConnections(in Input) float64 {
	if len(in.Edges) == 0 {
		return 0
	}

	base := clamp100(math.Log1p(float64(len(in.Edges))) * 40)

	highValue := 0
	for i := range in.Edges {
		if in.HighValue[in.Edges[i].Other(in.Contact.ID)] {
			highValue++
		}
	}
	highFrac := float64(highValue) / float64(len(in.Edges))

	return clamp100(base * (0.6 + 0.4*highFrac))
}

// scoreEngagementPatterns blends response rate, outreach fatigue, and
// campaign conversion. Missing history reads as neutral, not zero.
func (e *Engine) scoreEngagementPatterns(in Input) float64 {
	response := 50.0
	fatigue := 100.0
	if n := len(in.Outreach); n > 0 {
		responded := 0
		for i := range in.Outreach {
			if in.Outreach[i].Responded {
				responded++
			}
		}
		response = float64(responded) / float64(n) * 100
		// Heavier historical outreach volume lowers the fatigue component.
		fatigue = clamp100(100 - float64(n)*4)
	}

	conversion := 50.0
	if n := len(in.Campaigns); n > 0 {
		converted := 0
		for i := range in.Campaigns {
			if in.Campaigns[i].Converted {
				converted++
			}
		}
		conversion = float64(converted) / float64(n) * 100
	}

	return clamp100(response*0.5 + fatigue*0.25 + conversion*0.25)
}

// indicator point values and flag names for the additive flag system.
const (
	profileUpdateWindow = 30 * 24 * time.Hour
	contactGapMinDays   = 90
	contactGapMaxDays   = 365
)

// scoreOpportunityIndicators is the additive flag system: each detected
// signal contributes fixed points and appends a named flag.
func (e *Engine) scoreOpportunityIndicators(in Input, now time.Time) (float64, []string) {
	var score float64
	var flags []string

	if in.Contact.ProfileUpdatedAt != nil && now.Sub(*in.Contact.ProfileUpdatedAt) <= profileUpdateWindow {
		score += 25
		flags = append(flags, "recent_profile_update")
	}

	text := in.Contact.Company + " " + in.Contact.Position
	if len(MatchKeywords(e.tables.IndustryKeywords, text)) > 0 {
		score += 20
		flags = append(flags, "trending_industry")
	}

	if e.tables.SeniorityScore(in.Contact.Position) >= 70 {
		score += 20
		flags = append(flags, "senior_title")
	}

	if len(MatchKeywords(e.tables.GrowthKeywords, text)) > 0 {
		score += 15
		flags = append(flags, "company_growth")
	}

	if in.Contact.LastContactedAt != nil {
		days := now.Sub(*in.Contact.LastContactedAt).Hours() / 24
		if days >= contactGapMinDays && days <= contactGapMaxDays {
			score += 20
			flags = append(flags, "contact_gap")
		}
	}

	return clamp100(score), flags
}

// composite is the fixed-weight linear blend of the six factors.
func composite(f model.ScoreFactors, w config.FactorWeights) float64 {
	total := f.NetworkPosition*w.NetworkPosition +
		f.RelationshipStrength*w.RelationshipStrength +
		f.ProfessionalRelevance*w.ProfessionalRelevance +
		f.MutualConnections*w.MutualConnections +
		f.EngagementPatterns*w.EngagementPatterns +
		f.OpportunityIndicators*w.OpportunityIndicators

	if sum := w.Sum(); sum > 0 {
		total /= sum
	}

	return math.Round(clamp100(total)*100) / 100
}

// bestTableScore returns the highest score among table keywords found in text,
// or 0 when none match.
func bestTableScore(table map[string]float64, text string) float64 {
	var best float64
	for kw, score := range table {
		if len(MatchKeywords([]string{kw}, text)) > 0 && score > best {
			best = score
		}
	}
	return best
}

func clamp100(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
