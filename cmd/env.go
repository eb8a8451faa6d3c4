package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/network-intel/internal/inference"
	"github.com/sells-group/network-intel/internal/opportunity"
	"github.com/sells-group/network-intel/internal/queryparse"
	"github.com/sells-group/network-intel/internal/scoring"
	"github.com/sells-group/network-intel/internal/store"
	"github.com/sells-group/network-intel/pkg/anthropic"
)

// appEnv wires the store and every engine for one command invocation.
type appEnv struct {
	Store       store.Store
	Scorer      *scoring.Engine
	Inference   *inference.Engine
	Aggregator  *opportunity.Aggregator
	GapAnalyzer *opportunity.GapAnalyzer
	Parser      *queryparse.Parser
}

// initEnv opens the configured store backend and builds the engine graph.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := scoring.LoadTables(cfg.Scoring.KeywordTablePath)
	if err != nil {
		st.Close()
		return nil, err
	}

	analyzer := opportunity.NewGapAnalyzer(st, tables)
	aggregator := opportunity.NewAggregator(st, cfg.Detector,
		opportunity.NewIntroductionDetector(cfg.Detector, tables),
		opportunity.NewReconnectionDetector(st, cfg.Detector, tables),
		opportunity.NewBusinessMatchDetector(cfg.Detector, tables),
		opportunity.NewNetworkGapDetector(analyzer),
	)

	var client anthropic.Client
	if cfg.Anthropic.Enabled && cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Info("query parsing runs on the local keyword fallback")
	}

	return &appEnv{
		Store:       st,
		Scorer:      scoring.NewEngine(st, cfg.Scoring, cfg.Batch, tables),
		Inference:   inference.NewEngine(st, cfg.Inference, tables),
		Aggregator:  aggregator,
		GapAnalyzer: analyzer,
		Parser:      queryparse.NewParser(client, cfg.Anthropic.Model),
	}, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Close releases the store connection.
func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
