// Package queryparse translates free-text queries into the structured filter
// shape accepted by opportunity generation. It prefers an external
// text-generation call but never depends on it: a local keyword parser
// produces usable filters whenever the external call is unavailable or
// returns garbage.
package queryparse

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
	"github.com/sells-group/network-intel/pkg/anthropic"
)

const systemPrompt = `You translate a user's free-text request about networking opportunities into a JSON filter object. Respond with ONLY a JSON object, no prose, with any of these optional keys:
  "categories": array from ["introduction","reconnection","business_match","network_expansion","strategic_move"]
  "types": array of strings
  "priority": one of "urgent","high","medium","low"
  "min_confidence": number 0-1
  "min_impact": number 0-100
  "sort_by": one of "composite","confidence","impact","urgency","recency"
  "limit": integer
Omit keys the request does not imply.`

// Parser turns free text into generation filters.
type Parser struct {
	client    anthropic.Client
	modelName string
}

// NewParser creates a parser. A nil client disables the external call and
// every parse uses the local fallback.
func NewParser(client anthropic.Client, modelName string) *Parser {
	return &Parser{client: client, modelName: modelName}
}

// Parse produces filters for a free-text query. It always succeeds: an
// external-call failure degrades to the keyword fallback.
func (p *Parser) Parse(ctx context.Context, query string) model.GenerateFilters {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.GenerateFilters{}
	}

	if p.client != nil {
		if filters, ok := p.parseRemote(ctx, query); ok {
			return filters
		}
	}

	return ParseKeywords(query)
}

func (p *Parser) parseRemote(ctx context.Context, query string) (model.GenerateFilters, bool) {
	resp, err := resilience.DoVal(ctx, resilience.DefaultRetryConfig(),
		func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return p.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     p.modelName,
				MaxTokens: 512,
				System:    systemPrompt,
				Messages:  []anthropic.Message{{Role: "user", Content: query}},
			})
		})
	if err != nil {
		zap.L().Warn("queryparse: external parse failed, using keyword fallback", zap.Error(err))
		return model.GenerateFilters{}, false
	}
	resp.Usage.LogCost(p.modelName, "query_parse")

	filters, err := decodeFilters(resp.Text())
	if err != nil {
		zap.L().Warn("queryparse: unparseable external response, using keyword fallback", zap.Error(err))
		return model.GenerateFilters{}, false
	}
	return filters, true
}

// decodeFilters parses the model's JSON reply, tolerating code fences, and
// drops any value outside the legal domain.
func decodeFilters(text string) (model.GenerateFilters, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var filters model.GenerateFilters
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &filters); err != nil {
		return model.GenerateFilters{}, err
	}
	return sanitize(filters), nil
}

var validCategories = map[model.OpportunityCategory]bool{
	model.CategoryIntroduction:     true,
	model.CategoryReconnection:     true,
	model.CategoryBusinessMatch:    true,
	model.CategoryNetworkExpansion: true,
	model.CategoryStrategicMove:    true,
}

var validPriorities = map[model.PriorityTier]bool{
	model.PriorityUrgent: true,
	model.PriorityHigh:   true,
	model.PriorityMedium: true,
	model.PriorityLow:    true,
}

var validSortKeys = map[model.SortKey]bool{
	model.SortComposite:  true,
	model.SortConfidence: true,
	model.SortImpact:     true,
	model.SortUrgency:    true,
	model.SortRecency:    true,
}

func sanitize(f model.GenerateFilters) model.GenerateFilters {
	kept := f.Categories[:0]
	for _, c := range f.Categories {
		if validCategories[c] {
			kept = append(kept, c)
		}
	}
	f.Categories = kept

	if !validPriorities[f.Priority] {
		f.Priority = ""
	}
	if !validSortKeys[f.SortBy] {
		f.SortBy = ""
	}
	if f.MinConfidence < 0 || f.MinConfidence > 1 {
		f.MinConfidence = 0
	}
	if f.MinImpact < 0 || f.MinImpact > 100 {
		f.MinImpact = 0
	}
	if f.Limit < 0 {
		f.Limit = 0
	}
	return f
}

var limitPattern = regexp.MustCompile(`\b(?:top|first|limit)\s+(\d{1,3})\b`)

// categoryKeywords maps query phrases to the category they imply.
var categoryKeywords = map[model.OpportunityCategory][]string{
	model.CategoryIntroduction:     {"introduc", "intro ", "connect me", "warm intro"},
	model.CategoryReconnection:     {"reconnect", "catch up", "touch base", "follow up", "gone quiet", "dormant"},
	model.CategoryBusinessMatch:    {"business", "client", "deal", "partnership", "vendor", "investor", "referral"},
	model.CategoryNetworkExpansion: {"gap", "expand", "coverage", "diversify", "grow my network"},
	model.CategoryStrategicMove:    {"strategic", "long term", "long-term"},
}

// ParseKeywords is the local fallback: a fixed keyword scan over the query.
func ParseKeywords(query string) model.GenerateFilters {
	lower := strings.ToLower(query)
	var filters model.GenerateFilters

	for _, category := range []model.OpportunityCategory{
		model.CategoryIntroduction,
		model.CategoryReconnection,
		model.CategoryBusinessMatch,
		model.CategoryNetworkExpansion,
		model.CategoryStrategicMove,
	} {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				filters.Categories = append(filters.Categories, category)
				break
			}
		}
	}

	switch {
	case strings.Contains(lower, "urgent"):
		filters.Priority = model.PriorityUrgent
	case strings.Contains(lower, "high priority"), strings.Contains(lower, "important"):
		filters.Priority = model.PriorityHigh
	}

	switch {
	case strings.Contains(lower, "best"), strings.Contains(lower, "most likely"), strings.Contains(lower, "confident"):
		filters.MinConfidence = 0.6
	}

	switch {
	case strings.Contains(lower, "by impact"), strings.Contains(lower, "biggest impact"):
		filters.SortBy = model.SortImpact
	case strings.Contains(lower, "by urgency"), strings.Contains(lower, "most urgent"):
		filters.SortBy = model.SortUrgency
	case strings.Contains(lower, "newest"), strings.Contains(lower, "most recent"):
		filters.SortBy = model.SortRecency
	}

	if m := limitPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			filters.Limit = n
		}
	}

	return filters
}
