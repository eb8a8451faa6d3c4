package opportunity

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/network-intel/internal/config"
	"github.com/sells-group/network-intel/internal/graph"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/scoring"
	"github.com/sells-group/network-intel/internal/store"
)

// Timing window, in days since last contact, where a reconnection lands best.
const (
	sweetSpotMinDays = 90
	sweetSpotMaxDays = 180
)

// ReconnectionDetector surfaces contacts that have gone quiet for between one
// month and two years, timed and channeled by relationship history.
type ReconnectionDetector struct {
	st     store.Store
	cfg    config.DetectorConfig
	tables *scoring.Tables
	now    func() time.Time
}

// NewReconnectionDetector creates the dormant-contact detector.
func NewReconnectionDetector(st store.Store, cfg config.DetectorConfig, tables *scoring.Tables) *ReconnectionDetector {
	return &ReconnectionDetector{st: st, cfg: cfg, tables: tables, now: time.Now}
}

// WithClock overrides the detector clock; used in tests.
func (d *ReconnectionDetector) WithClock(now func() time.Time) *ReconnectionDetector {
	d.now = now
	return d
}

func (d *ReconnectionDetector) Name() string { return "reconnection" }

func (d *ReconnectionDetector) Detect(ctx context.Context, snap *graph.Snapshot) ([]Candidate, error) {
	now := d.now().UTC()

	var out []Candidate
	for _, contact := range snap.Contacts() {
		if contact.LastContactedAt == nil {
			continue
		}
		days := int(now.Sub(*contact.LastContactedAt).Hours() / 24)
		if days < d.cfg.ReconnectMinDays || days > d.cfg.ReconnectMaxDays {
			continue
		}

		outreach, err := d.st.ListOutreach(ctx, contact.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "opportunity: load outreach %s", contact.ID)
		}

		confidence := d.confidence(contact, outreach, days)
		channel := preferredChannel(outreach)
		if channel == "" {
			channel = d.tables.ChannelFor(contact.RelationshipKind)
		}

		out = append(out, Candidate{
			Category:   model.CategoryReconnection,
			Type:       "reconnect",
			Title:      fmt.Sprintf("Reconnect with %s", contact.FullName()),
			Confidence: confidence,
			Impact:     d.tables.ReconnectValueFor(contact.RelationshipKind),
			Effort:     15,
			Urgency:    urgencyForGap(days),
			Reasoning: model.Reasoning{
				Summary: fmt.Sprintf("No contact with %s in %d days.", contact.FullName(), days),
				Evidence: []string{
					fmt.Sprintf("last contacted %s", contact.LastContactedAt.Format("2006-01-02")),
					fmt.Sprintf("relationship kind: %s", contact.RelationshipKind),
				},
				SuccessIndicators: []string{"reply received", "meeting scheduled"},
			},
			Contacts: []string{contact.ID},
			Actions: []model.SuggestedAction{
				{
					Label:   "Send a check-in message",
					Channel: channel,
					Message: fmt.Sprintf("Hi %s, it's been a while since we last spoke. I'd love to catch up and hear what you've been working on.", contact.FirstName),
				},
			},
		})
	}

	return out, nil
}

// confidence blends historical response rate, the relationship-kind base
// strength, and a timing bonus inside the sweet-spot window.
func (d *ReconnectionDetector) confidence(contact *model.Contact, outreach []model.OutreachRecord, days int) float64 {
	responseRate := 0.5
	if len(outreach) > 0 {
		responded := 0
		for i := range outreach {
			if outreach[i].Responded {
				responded++
			}
		}
		responseRate = float64(responded) / float64(len(outreach))
	}

	kindStrength := d.tables.KindStrengthFor(contact.RelationshipKind) / 100

	confidence := responseRate*0.4 + kindStrength*0.4
	if days >= sweetSpotMinDays && days <= sweetSpotMaxDays {
		confidence += 0.2
	}
	return math.Min(1, confidence)
}

// urgencyForGap peaks inside the sweet spot and tapers toward the two-year
// ceiling, where the relationship is likely already cold.
func urgencyForGap(days int) float64 {
	switch {
	case days >= sweetSpotMinDays && days <= sweetSpotMaxDays:
		return 80
	case days < sweetSpotMinDays:
		return 50
	case days <= 365:
		return 60
	default:
		return 35
	}
}

// preferredChannel returns the channel the contact most often responded on,
// or "" when no responded outreach exists.
func preferredChannel(outreach []model.OutreachRecord) string {
	counts := make(map[string]int)
	for i := range outreach {
		if outreach[i].Responded && outreach[i].Channel != "" {
			counts[outreach[i].Channel]++
		}
	}
	best, bestCount := "", 0
	for channel, count := range counts {
		if count > bestCount || (count == bestCount && channel < best) {
			best, bestCount = channel, count
		}
	}
	return best
}
