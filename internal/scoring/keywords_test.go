package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/network-intel/internal/model"
)

func TestKindStrengthDefaults(t *testing.T) {
	tables := DefaultTables()

	assert.Equal(t, 95.0, tables.KindStrengthFor(model.KindMentor))
	assert.Equal(t, 70.0, tables.KindStrengthFor(model.KindColleague))
	assert.Equal(t, float64(DefaultKindStrength), tables.KindStrengthFor("imaginary"))

	assert.Equal(t, 90.0, tables.ReconnectValueFor(model.KindMentor))
	assert.Equal(t, float64(DefaultReconnectValue), tables.ReconnectValueFor("imaginary"))
}

func TestChannelFor(t *testing.T) {
	tables := DefaultTables()

	assert.Equal(t, "linkedin", tables.ChannelFor(model.KindColleague))
	assert.Equal(t, "phone", tables.ChannelFor(model.KindFriend))
	assert.Equal(t, "email", tables.ChannelFor("imaginary"))
}

func TestSeniorityScore(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		title string
		want  float64
	}{
		{"Founder & CEO", 95},
		{"Chief Technology Officer", 90},
		{"VP of Engineering", 80},
		{"Barista", 40},
		{"", 40},
		// Whole-word matching: "coo" must not fire inside "Coordinator".
		{"Coordinator", 40},
		{"Events Coordinator", 40},
		{"Vice-President", 80},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, tables.SeniorityScore(tt.title))
		})
	}
}

func TestSeniorityScorePicksHighestMatch(t *testing.T) {
	tables := DefaultTables()
	// "vp" and "founder" both match; the higher score wins.
	assert.Equal(t, 95.0, tables.SeniorityScore("Founder, former VP"))
}

func TestIsGenericDomain(t *testing.T) {
	tables := DefaultTables()

	assert.True(t, tables.IsGenericDomain("gmail.com"))
	assert.True(t, tables.IsGenericDomain("GMAIL.com"))
	assert.False(t, tables.IsGenericDomain("stripe.com"))
}

func TestMatchKeywords(t *testing.T) {
	keywords := []string{"fintech", "saas", "ai"}

	assert.Equal(t, []string{"fintech", "ai"},
		MatchKeywords(keywords, "Fintech platform", "AI team lead"))
	assert.Nil(t, MatchKeywords(keywords, "", ""))
	assert.Nil(t, MatchKeywords(keywords, "retail logistics"))
}

func TestMatchKeywordsWholeWordsOnly(t *testing.T) {
	// "ai" is a word, not a fragment of "retail" or "maintain".
	assert.Nil(t, MatchKeywords([]string{"ai"}, "retail logistics", "maintains fleets"))
	assert.Equal(t, []string{"ai"}, MatchKeywords([]string{"ai"}, "AI research"))

	// Punctuation and case are word separators, and phrases still match.
	assert.Equal(t, []string{"series a"}, MatchKeywords([]string{"series a"}, "closed a Series A round"))
	assert.Equal(t, []string{"cloud"}, MatchKeywords([]string{"cloud"}, "multi-cloud platform"))
}

func TestLoadTablesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	yaml := `
kind_strength:
  mentor: 99
industry_keywords:
  - quantum
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	assert.Equal(t, 99.0, tables.KindStrengthFor(model.KindMentor))
	assert.Equal(t, []string{"quantum"}, tables.IndustryKeywords)

	// Sections absent from the overlay keep their defaults.
	assert.Equal(t, "linkedin", tables.ChannelFor(model.KindColleague))
	assert.True(t, tables.IsGenericDomain("gmail.com"))
}

func TestLoadTablesMissingFile(t *testing.T) {
	_, err := LoadTables("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadTablesEmptyPath(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Equal(t, 95.0, tables.KindStrengthFor(model.KindMentor))
}
