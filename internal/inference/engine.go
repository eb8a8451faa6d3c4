// Package inference discovers unconfirmed relationship candidates from
// profile overlap and graph structure. Candidates are stored as potential
// relationships, never as confirmed edges.
package inference

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/network-intel/internal/config"
	"github.com/sells-group/network-intel/internal/graph"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/scoring"
	"github.com/sells-group/network-intel/internal/store"
)

// Evidence scores for each independent check. The mutual-connection check
// accumulates per shared contact up to its cap.
const (
	evidenceSameCompany    = 0.8
	evidenceRelatedCompany = 0.4
	evidenceSharedDomain   = 0.7
	evidenceCityState      = 0.3
	evidenceStateOnly      = 0.1
	evidenceRoleToken      = 0.2
	evidenceRoleCap        = 0.4
	evidenceSharedNetwork  = 0.1
	evidencePerMutual      = 0.2
	evidenceMutualCap      = 0.6
)

// Engine infers potential relationships between a tenant's contacts.
type Engine struct {
	st     store.Store
	cfg    config.InferenceConfig
	tables *scoring.Tables
	now    func() time.Time
}

// NewEngine creates an inference engine.
func NewEngine(st store.Store, cfg config.InferenceConfig, tables *scoring.Tables) *Engine {
	return &Engine{st: st, cfg: cfg, tables: tables, now: time.Now}
}

// WithClock overrides the engine clock; used in tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Discover evaluates every tenant contact as a candidate for contactID,
// persists the strongest surviving candidates, and returns them ordered by
// confidence.
func (e *Engine) Discover(ctx context.Context, tenantID, contactID string) ([]model.PotentialRelationship, error) {
	snap, err := graph.Load(ctx, e.st, tenantID)
	if err != nil {
		return nil, err
	}
	return e.discover(ctx, snap, contactID, true)
}

// discover runs the candidate scan against an already-loaded snapshot.
// persist controls whether surviving candidates are written back.
func (e *Engine) discover(ctx context.Context, snap *graph.Snapshot, contactID string, persist bool) ([]model.PotentialRelationship, error) {
	contact := snap.Contact(contactID)
	if contact == nil {
		c, err := e.st.GetContact(ctx, snap.TenantID, contactID)
		if err != nil {
			return nil, err
		}
		contact = c
	}

	var found []model.PotentialRelationship
	pool := 0
	for _, candidate := range snap.Contacts() {
		if candidate.ID == contactID {
			continue
		}
		// Already-connected pairs are the graph's business, not inference's.
		if snap.Connected(contactID, candidate.ID) {
			continue
		}
		if e.cfg.MaxCandidatePool > 0 && pool >= e.cfg.MaxCandidatePool {
			break
		}
		pool++

		evidence := e.gatherEvidence(snap, contact, candidate)
		if len(evidence) == 0 {
			continue
		}

		confidence := meanScore(evidence)
		if confidence < e.cfg.MinConfidence {
			continue
		}

		found = append(found, model.PotentialRelationship{
			ID:           uuid.NewString(),
			TenantID:     snap.TenantID,
			ContactID:    contactID,
			RelatedID:    candidate.ID,
			InferredKind: e.inferKind(contact, candidate, evidence),
			Confidence:   confidence,
			Evidence:     evidence,
			DiscoveredAt: e.now().UTC(),
		})
	}

	// Highest confidence first; candidate ID breaks ties so output order is
	// stable across runs.
	sort.Slice(found, func(i, j int) bool {
		if found[i].Confidence != found[j].Confidence {
			return found[i].Confidence > found[j].Confidence
		}
		return found[i].RelatedID < found[j].RelatedID
	})

	if limit := e.cfg.MaxPerContact; limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	if persist {
		for i := range found {
			if err := e.st.UpsertPotentialRelationship(ctx, &found[i]); err != nil {
				return nil, eris.Wrapf(err, "inference: persist candidate %s -> %s", contactID, found[i].RelatedID)
			}
		}
	}

	zap.L().Info("inference: discovered candidates",
		zap.String("contact_id", contactID),
		zap.Int("candidates", len(found)),
	)

	return found, nil
}

// gatherEvidence runs every independent check for one (contact, candidate)
// pair and returns the contributions that fired.
func (e *Engine) gatherEvidence(snap *graph.Snapshot, a, b *model.Contact) []model.Evidence {
	var ev []model.Evidence

	switch {
	case sameCompany(a.Company, b.Company):
		ev = append(ev, model.Evidence{
			Type:    model.EvidenceSameCompany,
			Score:   evidenceSameCompany,
			Details: fmt.Sprintf("both at %s", a.Company),
		})
	case e.relatedCompany(a, b):
		ev = append(ev, model.Evidence{
			Type:    model.EvidenceRelatedCompany,
			Score:   evidenceRelatedCompany,
			Details: fmt.Sprintf("%s and %s look like related employers", a.Company, b.Company),
		})
	}

	if domain := sharedDomain(a.Email, b.Email); domain != "" && !e.tables.IsGenericDomain(domain) {
		ev = append(ev, model.Evidence{
			Type:    model.EvidenceSharedDomain,
			Score:   evidenceSharedDomain,
			Details: "shared email domain " + domain,
		})
	}

	if a.State != "" && strings.EqualFold(a.State, b.State) {
		if a.City != "" && strings.EqualFold(a.City, b.City) {
			ev = append(ev, model.Evidence{
				Type:    model.EvidenceSameLocation,
				Score:   evidenceCityState,
				Details: fmt.Sprintf("both in %s, %s", a.City, a.State),
			})
		} else {
			ev = append(ev, model.Evidence{
				Type:    model.EvidenceSameLocation,
				Score:   evidenceStateOnly,
				Details: "both in " + a.State,
			})
		}
	}

	if overlap := roleOverlap(a.Position, b.Position); overlap > 0 {
		ev = append(ev, model.Evidence{
			Type:    model.EvidenceSimilarRole,
			Score:   overlap,
			Details: fmt.Sprintf("similar roles: %s / %s", a.Position, b.Position),
		})
	}

	if network := sharedNetwork(a.Networks, b.Networks); network != "" {
		ev = append(ev, model.Evidence{
			Type:    model.EvidenceSharedNetwork,
			Score:   evidenceSharedNetwork,
			Details: "both present on " + network,
		})
	}

	if mutuals := snap.MutualConnections(a.ID, b.ID); len(mutuals) > 0 {
		score := math.Min(evidenceMutualCap, float64(len(mutuals))*evidencePerMutual)
		ev = append(ev, model.Evidence{
			Type:    model.EvidenceMutuals,
			Score:   score,
			Details: fmt.Sprintf("%d mutual connections", len(mutuals)),
		})
	}

	return ev
}

// inferKind picks the relationship label from the strongest evidence class.
func (e *Engine) inferKind(a, b *model.Contact, evidence []model.Evidence) model.RelationshipKind {
	has := make(map[model.EvidenceType]float64, len(evidence))
	for _, ev := range evidence {
		has[ev.Type] = ev.Score
	}

	switch {
	case has[model.EvidenceSameCompany] > 0:
		return model.KindColleague
	case has[model.EvidenceRelatedCompany] > 0:
		if e.buyerSellerPair(a, b) {
			return model.KindClient
		}
		return model.KindPartner
	case has[model.EvidenceSharedDomain] > 0:
		return model.KindColleague
	case has[model.EvidenceMutuals] >= 2*evidencePerMutual:
		return model.KindAcquaintance
	default:
		return model.KindProspect
	}
}

// buyerSellerPair reports whether one side reads as a buyer and the other a
// seller, in either direction.
func (e *Engine) buyerSellerPair(a, b *model.Contact) bool {
	aText := a.Company + " " + a.Position
	bText := b.Company + " " + b.Position

	aBuys := len(scoring.MatchKeywords(e.tables.BuyerKeywords, aText)) > 0
	aSells := len(scoring.MatchKeywords(e.tables.SellerKeywords, aText)) > 0
	bBuys := len(scoring.MatchKeywords(e.tables.BuyerKeywords, bText)) > 0
	bSells := len(scoring.MatchKeywords(e.tables.SellerKeywords, bText)) > 0

	return (aBuys && bSells) || (aSells && bBuys)
}

// relatedCompany reports whether the two contacts' employers look related:
// either one normalized company name contains the other ("Acme" and "Acme
// Ventures"), or their profiles sit in complementary industries per the
// industry-complement table.
func (e *Engine) relatedCompany(a, b *model.Contact) bool {
	if na, nb := normalizeCompany(a.Company), normalizeCompany(b.Company); na != "" && nb != "" && na != nb {
		if strings.Contains(" "+na+" ", " "+nb+" ") || strings.Contains(" "+nb+" ", " "+na+" ") {
			return true
		}
	}

	aText := strings.ToLower(a.Company + " " + a.Position)
	bText := strings.ToLower(b.Company + " " + b.Position)

	for industry, complements := range e.tables.IndustryComplements {
		if !strings.Contains(aText, industry) {
			continue
		}
		for _, comp := range complements {
			if strings.Contains(bText, comp) {
				return true
			}
		}
	}
	for industry, complements := range e.tables.IndustryComplements {
		if !strings.Contains(bText, industry) {
			continue
		}
		for _, comp := range complements {
			if strings.Contains(aText, comp) {
				return true
			}
		}
	}
	return false
}

// companySuffixes are legal-form tokens stripped before company comparison.
var companySuffixes = []string{"inc", "llc", "ltd", "corp", "co", "gmbh", "plc"}

func normalizeCompany(name string) string {
	var fields []string
	for _, f := range strings.Fields(strings.ToLower(name)) {
		if f = strings.Trim(f, ",."); f != "" {
			fields = append(fields, f)
		}
	}
	for len(fields) > 0 {
		last := fields[len(fields)-1]
		stripped := false
		for _, suffix := range companySuffixes {
			if last == suffix {
				fields = fields[:len(fields)-1]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return strings.Join(fields, " ")
}

func sameCompany(a, b string) bool {
	na, nb := normalizeCompany(a), normalizeCompany(b)
	return na != "" && na == nb
}

func sharedDomain(a, b string) string {
	da, db := emailDomain(a), emailDomain(b)
	if da != "" && da == db {
		return da
	}
	return ""
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// roleStopwords are title tokens too common to count as overlap.
var roleStopwords = map[string]bool{
	"of": true, "the": true, "and": true, "for": true, "at": true,
	"senior": true, "junior": true, "associate": true, "assistant": true,
}

// roleOverlap scores shared significant title tokens, capped so role
// similarity never dominates stronger evidence.
func roleOverlap(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	aTokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(a)) {
		if !roleStopwords[tok] {
			aTokens[tok] = true
		}
	}
	shared := 0
	for _, tok := range strings.Fields(strings.ToLower(b)) {
		if aTokens[tok] && !roleStopwords[tok] {
			shared++
			delete(aTokens, tok)
		}
	}
	return math.Min(evidenceRoleCap, float64(shared)*evidenceRoleToken)
}

func sharedNetwork(a, b []string) string {
	for _, na := range a {
		for _, nb := range b {
			if strings.EqualFold(na, nb) {
				return strings.ToLower(na)
			}
		}
	}
	return ""
}

// meanScore averages evidence contributions, clipped to [0, 1].
func meanScore(evidence []model.Evidence) float64 {
	var sum float64
	for _, ev := range evidence {
		sum += ev.Score
	}
	mean := sum / float64(len(evidence))
	return math.Min(1, math.Max(0, mean))
}
