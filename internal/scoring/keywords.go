package scoring

import (
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/network-intel/internal/model"
)

// Tables holds the static heuristic lookup tables consumed by the scoring
// engine, the inference engine, and the opportunity detectors. They are
// injected rather than referenced globally so they can be tuned and tested
// independently of the logic that consumes them.
type Tables struct {
	// KindStrength maps relationship kind to a 0-100 base strength.
	KindStrength map[model.RelationshipKind]float64 `yaml:"kind_strength"`

	// KindReconnectValue maps relationship kind to a 0-100 reconnection value.
	KindReconnectValue map[model.RelationshipKind]float64 `yaml:"kind_reconnect_value"`

	// KindDefaultChannel maps relationship kind to a default outreach channel.
	KindDefaultChannel map[model.RelationshipKind]string `yaml:"kind_default_channel"`

	// SeniorityKeywords maps a job-title keyword to a 0-100 seniority score.
	SeniorityKeywords map[string]float64 `yaml:"seniority_keywords"`

	// IndustryKeywords are trending-industry terms matched against company
	// and position text.
	IndustryKeywords []string `yaml:"industry_keywords"`

	// GrowthKeywords signal company growth when present in profile text.
	GrowthKeywords []string `yaml:"growth_keywords"`

	// CompanySizeKeywords maps a size-signal keyword to a 0-100 score.
	CompanySizeKeywords map[string]float64 `yaml:"company_size_keywords"`

	// RoleComplements maps a role keyword to roles it pairs well with.
	RoleComplements map[string][]string `yaml:"role_complements"`

	// IndustryComplements maps an industry keyword to industries it pairs
	// well with.
	IndustryComplements map[string][]string `yaml:"industry_complements"`

	// BuyerKeywords and SellerKeywords drive the client-vs-partner call on
	// related-employer inference evidence.
	BuyerKeywords  []string `yaml:"buyer_keywords"`
	SellerKeywords []string `yaml:"seller_keywords"`

	// GenericEmailDomains are consumer domains that carry no shared-employer
	// signal.
	GenericEmailDomains []string `yaml:"generic_email_domains"`
}

const (
	// DefaultKindStrength is the base strength for an unknown relationship kind.
	DefaultKindStrength = 50
	// DefaultReconnectValue is the reconnection value for an unknown kind.
	DefaultReconnectValue = 10
)

// DefaultTables returns the built-in heuristic tables.
func DefaultTables() *Tables {
	return &Tables{
		KindStrength: map[model.RelationshipKind]float64{
			model.KindMentor:       95,
			model.KindAdvisor:      85,
			model.KindPartner:      85,
			model.KindClient:       80,
			model.KindInvestor:     80,
			model.KindMentee:       75,
			model.KindColleague:    70,
			model.KindFriend:       60,
			model.KindProspect:     55,
			model.KindAcquaintance: 45,
			model.KindCompetitor:   40,
			model.KindFamily:       30,
		},
		KindReconnectValue: map[model.RelationshipKind]float64{
			model.KindMentor:       90,
			model.KindClient:       85,
			model.KindPartner:      80,
			model.KindInvestor:     80,
			model.KindAdvisor:      75,
			model.KindColleague:    65,
			model.KindMentee:       60,
			model.KindFriend:       50,
			model.KindProspect:     45,
			model.KindAcquaintance: 30,
			model.KindCompetitor:   15,
			model.KindFamily:       20,
		},
		KindDefaultChannel: map[model.RelationshipKind]string{
			model.KindMentor:       "email",
			model.KindClient:       "email",
			model.KindPartner:      "email",
			model.KindInvestor:     "email",
			model.KindAdvisor:      "email",
			model.KindColleague:    "linkedin",
			model.KindMentee:       "email",
			model.KindFriend:       "phone",
			model.KindProspect:     "linkedin",
			model.KindAcquaintance: "linkedin",
			model.KindFamily:       "phone",
		},
		SeniorityKeywords: map[string]float64{
			"founder":        95,
			"chief":          90,
			"ceo":            90,
			"cto":            90,
			"cfo":            90,
			"coo":            90,
			"president":      88,
			"partner":        85,
			"owner":          85,
			"vice president": 80,
			"vp":             80,
			"head of":        72,
			"director":       70,
			"principal":      65,
			"senior":         60,
			"lead":           55,
			"manager":        55,
		},
		IndustryKeywords: []string{
			"artificial intelligence", "machine learning", "ai",
			"fintech", "cybersecurity", "biotech", "healthtech",
			"climate", "renewable", "saas", "cloud", "data",
			"robotics", "blockchain", "semiconductor",
		},
		GrowthKeywords: []string{
			"hiring", "expanding", "growth", "series a", "series b",
			"series c", "funding", "raised", "scaling", "launch",
			"acquisition", "ipo",
		},
		CompanySizeKeywords: map[string]float64{
			"enterprise":    85,
			"global":        80,
			"international": 75,
			"fortune":       90,
			"group":         60,
			"holdings":      65,
			"startup":       45,
			"boutique":      40,
			"studio":        35,
		},
		RoleComplements: map[string][]string{
			"sales":       {"marketing", "product", "partnerships"},
			"marketing":   {"sales", "design", "growth"},
			"engineering": {"product", "design", "data"},
			"product":     {"engineering", "design", "sales"},
			"founder":     {"investor", "advisor", "operator"},
			"investor":    {"founder", "operator"},
			"finance":     {"operations", "legal"},
			"operations":  {"finance", "engineering"},
			"recruiting":  {"engineering", "sales", "operations"},
			"legal":       {"finance", "compliance"},
		},
		IndustryComplements: map[string][]string{
			"fintech":       {"banking", "insurance", "compliance"},
			"healthtech":    {"healthcare", "insurance", "biotech"},
			"saas":          {"consulting", "agency", "enterprise"},
			"cybersecurity": {"cloud", "fintech", "enterprise"},
			"logistics":     {"retail", "manufacturing", "ecommerce"},
			"ecommerce":     {"logistics", "marketing", "payments"},
			"real estate":   {"construction", "finance", "insurance"},
			"media":         {"advertising", "entertainment", "marketing"},
		},
		BuyerKeywords: []string{
			"procurement", "purchasing", "sourcing", "buyer", "acquisitions",
		},
		SellerKeywords: []string{
			"sales", "account executive", "business development", "vendor",
		},
		GenericEmailDomains: []string{
			"gmail.com", "yahoo.com", "outlook.com", "hotmail.com",
			"icloud.com", "aol.com", "proton.me", "protonmail.com",
			"live.com", "msn.com", "me.com",
		},
	}
}

// LoadTables returns the default tables, overlaid with any non-empty fields
// from the yaml file at path. An empty path returns the defaults unchanged.
func LoadTables(path string) (*Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scoring: read keyword tables %s", path)
	}

	var overlay Tables
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, eris.Wrapf(err, "scoring: parse keyword tables %s", path)
	}

	if len(overlay.KindStrength) > 0 {
		tables.KindStrength = overlay.KindStrength
	}
	if len(overlay.KindReconnectValue) > 0 {
		tables.KindReconnectValue = overlay.KindReconnectValue
	}
	if len(overlay.KindDefaultChannel) > 0 {
		tables.KindDefaultChannel = overlay.KindDefaultChannel
	}
	if len(overlay.SeniorityKeywords) > 0 {
		tables.SeniorityKeywords = overlay.SeniorityKeywords
	}
	if len(overlay.IndustryKeywords) > 0 {
		tables.IndustryKeywords = overlay.IndustryKeywords
	}
	if len(overlay.GrowthKeywords) > 0 {
		tables.GrowthKeywords = overlay.GrowthKeywords
	}
	if len(overlay.CompanySizeKeywords) > 0 {
		tables.CompanySizeKeywords = overlay.CompanySizeKeywords
	}
	if len(overlay.RoleComplements) > 0 {
		tables.RoleComplements = overlay.RoleComplements
	}
	if len(overlay.IndustryComplements) > 0 {
		tables.IndustryComplements = overlay.IndustryComplements
	}
	if len(overlay.BuyerKeywords) > 0 {
		tables.BuyerKeywords = overlay.BuyerKeywords
	}
	if len(overlay.SellerKeywords) > 0 {
		tables.SellerKeywords = overlay.SellerKeywords
	}
	if len(overlay.GenericEmailDomains) > 0 {
		tables.GenericEmailDomains = overlay.GenericEmailDomains
	}

	return tables, nil
}

// KindStrengthFor returns the base strength for kind, falling back to the
// documented default for unknown kinds.
func (t *Tables) KindStrengthFor(kind model.RelationshipKind) float64 {
	if v, ok := t.KindStrength[kind]; ok {
		return v
	}
	return DefaultKindStrength
}

// ReconnectValueFor returns the reconnection value for kind, falling back to
// the documented default for unknown kinds.
func (t *Tables) ReconnectValueFor(kind model.RelationshipKind) float64 {
	if v, ok := t.KindReconnectValue[kind]; ok {
		return v
	}
	return DefaultReconnectValue
}

// ChannelFor returns the default outreach channel for kind.
func (t *Tables) ChannelFor(kind model.RelationshipKind) string {
	if v, ok := t.KindDefaultChannel[kind]; ok {
		return v
	}
	return "email"
}

// SeniorityScore returns the seniority score for a job title, or 40 when no
// keyword matches. Keywords match on word boundaries so "coo" does not fire
// on "Coordinator".
func (t *Tables) SeniorityScore(title string) float64 {
	folded := foldWords(title)
	best := 40.0
	matched := false
	for kw, score := range t.SeniorityKeywords {
		if containsWords(folded, kw) && (!matched || score > best) {
			best = score
			matched = true
		}
	}
	return best
}

// IsGenericDomain reports whether domain is a consumer email domain.
func (t *Tables) IsGenericDomain(domain string) bool {
	lower := strings.ToLower(domain)
	for _, d := range t.GenericEmailDomains {
		if lower == d {
			return true
		}
	}
	return false
}

// MatchKeywords returns all keywords that appear (case-insensitive, on word
// boundaries) in the given texts. Multi-word keywords match as a phrase.
func MatchKeywords(keywords []string, texts ...string) []string {
	var nonEmpty []string
	for _, t := range texts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	if len(nonEmpty) == 0 {
		return nil
	}
	combined := foldWords(strings.Join(nonEmpty, " "))

	var matched []string
	for _, kw := range keywords {
		if containsWords(combined, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// foldWords lowercases text and collapses every run of non-alphanumeric
// characters to a single space, with one leading and trailing space so
// callers can test whole-word containment.
func foldWords(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	fields := strings.Fields(mapped)
	if len(fields) == 0 {
		return " "
	}
	return " " + strings.Join(fields, " ") + " "
}

// containsWords reports whether the folded text contains keyword as a whole
// word or phrase.
func containsWords(folded, keyword string) bool {
	needle := foldWords(keyword)
	if needle == " " {
		return false
	}
	return strings.Contains(folded, needle)
}
