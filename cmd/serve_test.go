package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/network-intel/internal/config"
	"github.com/sells-group/network-intel/internal/inference"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/opportunity"
	"github.com/sells-group/network-intel/internal/queryparse"
	"github.com/sells-group/network-intel/internal/scoring"
	"github.com/sells-group/network-intel/internal/store/storetest"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		Paths:  config.PathsConfig{MaxDegrees: 4, MinStrength: 0.2, MaxResults: 3},
		Scoring: config.ScoringConfig{
			PriorityWeights: config.FactorWeights{
				NetworkPosition: 0.20, RelationshipStrength: 0.25, ProfessionalRelevance: 0.20,
				MutualConnections: 0.10, EngagementPatterns: 0.15, OpportunityIndicators: 0.10,
			},
			OpportunityWeights: config.FactorWeights{
				NetworkPosition: 0.10, RelationshipStrength: 0.10, ProfessionalRelevance: 0.25,
				MutualConnections: 0.10, EngagementPatterns: 0.10, OpportunityIndicators: 0.35,
			},
			StrategicWeights: config.FactorWeights{
				NetworkPosition: 0.35, RelationshipStrength: 0.15, ProfessionalRelevance: 0.20,
				MutualConnections: 0.15, EngagementPatterns: 0.05, OpportunityIndicators: 0.10,
			},
			RecencyDecayDays: 150,
		},
		Inference: config.InferenceConfig{MinConfidence: 0.3, MaxPerContact: 5, MaxCandidatePool: 500},
		Detector: config.DetectorConfig{
			IntroductionMinConfidence:  0.4,
			IntroductionMinStrength:    0.6,
			BusinessMatchMinConfidence: 0.3,
			ReconnectMinDays:           30,
			ReconnectMaxDays:           730,
			DedupWindowDays:            7,
			DefaultLimit:               20,
		},
		Batch: config.BatchConfig{ChunkSize: 5, PauseMillis: 1},
	}
}

func testServer(t *testing.T, fake *storetest.Fake) *httptest.Server {
	t.Helper()
	cfg = testConfig()

	tables, err := scoring.LoadTables("")
	require.NoError(t, err)

	analyzer := opportunity.NewGapAnalyzer(fake, tables)
	env := &appEnv{
		Store:       fake,
		Scorer:      scoring.NewEngine(fake, cfg.Scoring, cfg.Batch, tables),
		Inference:   inference.NewEngine(fake, cfg.Inference, tables),
		Aggregator:  opportunity.NewAggregator(fake, cfg.Detector, opportunity.NewNetworkGapDetector(analyzer)),
		GapAnalyzer: analyzer,
		Parser:      queryparse.NewParser(nil, ""),
	}

	srv := httptest.NewServer(newRouter(env))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, storetest.New())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestScoreEndpoint(t *testing.T) {
	fake := storetest.New().Seed(&model.Contact{
		ID:       "c1",
		TenantID: "t1",
		Company:  "Acme Inc",
		Position: "VP of Sales",
	})
	srv := testServer(t, fake)

	resp, err := http.Post(srv.URL+"/api/contacts/c1/score", "application/json",
		strings.NewReader(`{"tenant_id":"t1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBatchScoreEndpointReportsCounts(t *testing.T) {
	fake := storetest.New().Seed(
		&model.Contact{ID: "c1", TenantID: "t1", Company: "Acme Inc", Position: "VP of Sales"},
		&model.Contact{ID: "c2", TenantID: "t1", Company: "Acme Inc", Position: "CTO"},
	)
	srv := testServer(t, fake)

	resp, err := http.Post(srv.URL+"/api/score/batch", "application/json",
		strings.NewReader(`{"tenant_id":"t1","contact_ids":["c1","c2","missing"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result scoring.BatchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Scored)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"missing"}, result.Failed)
}

func TestScoreEndpointUnknownContact(t *testing.T) {
	srv := testServer(t, storetest.New())

	resp, err := http.Post(srv.URL+"/api/contacts/nope/score", "application/json",
		strings.NewReader(`{"tenant_id":"t1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScoreEndpointBadBody(t *testing.T) {
	srv := testServer(t, storetest.New())

	resp, err := http.Post(srv.URL+"/api/contacts/c1/score", "application/json",
		strings.NewReader(`{not json`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPathsEndpointInvalidParam(t *testing.T) {
	fake := storetest.New().Seed(
		&model.Contact{ID: "a", TenantID: "t1"},
		&model.Contact{ID: "b", TenantID: "t1"},
	)
	srv := testServer(t, fake)

	resp, err := http.Get(srv.URL + "/api/paths?tenant=t1&from=a&to=b&max_degrees=lots")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPathsEndpointDisconnected(t *testing.T) {
	fake := storetest.New().Seed(
		&model.Contact{ID: "a", TenantID: "t1"},
		&model.Contact{ID: "b", TenantID: "t1"},
	)
	srv := testServer(t, fake)

	resp, err := http.Get(srv.URL + "/api/paths?tenant=t1&from=a&to=b")
	require.NoError(t, err)
	defer resp.Body.Close()

	// No route is an empty list, not an error.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusEndpointRejectsIllegalTransition(t *testing.T) {
	fake := storetest.New()
	fake.Suggestions = append(fake.Suggestions, model.OpportunitySuggestion{
		ID:        "s1",
		TenantID:  "t1",
		Title:     "Reconnect with Dana",
		Status:    model.StatusPending,
		CreatedAt: time.Now(),
	})
	srv := testServer(t, fake)

	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/opportunities/s1/status",
		strings.NewReader(`{"status":"completed"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGapsEndpoint(t *testing.T) {
	fake := storetest.New().Seed(
		&model.Contact{ID: "c1", TenantID: "t1", Company: "Stripe", Position: "Engineer"},
		&model.Contact{ID: "c2", TenantID: "t1", Company: "Plaid", Position: "Engineer"},
	)
	srv := testServer(t, fake)

	resp, err := http.Get(srv.URL + "/api/gaps?tenant=t1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
