package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Inference InferenceConfig `yaml:"inference" mapstructure:"inference"`
	Detector  DetectorConfig  `yaml:"detector" mapstructure:"detector"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds settings for the free-text query parser.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
}

// ScoringConfig holds the three composite weight vectors and scoring
// tunables. Each weight vector must sum to 1.0 across the six factors.
type ScoringConfig struct {
	PriorityWeights    FactorWeights `yaml:"priority_weights" mapstructure:"priority_weights"`
	OpportunityWeights FactorWeights `yaml:"opportunity_weights" mapstructure:"opportunity_weights"`
	StrategicWeights   FactorWeights `yaml:"strategic_weights" mapstructure:"strategic_weights"`

	// RecencyDecayDays is the window over which contact recency decays
	// linearly to zero.
	RecencyDecayDays int `yaml:"recency_decay_days" mapstructure:"recency_decay_days"`

	// KeywordTablePath optionally overlays the built-in keyword tables
	// from a yaml file.
	KeywordTablePath string `yaml:"keyword_table_path" mapstructure:"keyword_table_path"`
}

// FactorWeights is one composite weight vector over the six sub-scores.
type FactorWeights struct {
	NetworkPosition       float64 `yaml:"network_position" mapstructure:"network_position"`
	RelationshipStrength  float64 `yaml:"relationship_strength" mapstructure:"relationship_strength"`
	ProfessionalRelevance float64 `yaml:"professional_relevance" mapstructure:"professional_relevance"`
	MutualConnections     float64 `yaml:"mutual_connections" mapstructure:"mutual_connections"`
	EngagementPatterns    float64 `yaml:"engagement_patterns" mapstructure:"engagement_patterns"`
	OpportunityIndicators float64 `yaml:"opportunity_indicators" mapstructure:"opportunity_indicators"`
}

// Sum returns the total of the six weights.
func (w FactorWeights) Sum() float64 {
	return w.NetworkPosition + w.RelationshipStrength + w.ProfessionalRelevance +
		w.MutualConnections + w.EngagementPatterns + w.OpportunityIndicators
}

// InferenceConfig configures the relationship inference engine.
type InferenceConfig struct {
	MinConfidence    float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	MaxPerContact    int     `yaml:"max_per_contact" mapstructure:"max_per_contact"`
	MaxCandidatePool int     `yaml:"max_candidate_pool" mapstructure:"max_candidate_pool"`
}

// DetectorConfig configures the opportunity detectors.
type DetectorConfig struct {
	IntroductionMinConfidence  float64 `yaml:"introduction_min_confidence" mapstructure:"introduction_min_confidence"`
	IntroductionMinStrength    float64 `yaml:"introduction_min_strength" mapstructure:"introduction_min_strength"`
	BusinessMatchMinConfidence float64 `yaml:"business_match_min_confidence" mapstructure:"business_match_min_confidence"`
	ReconnectMinDays           int     `yaml:"reconnect_min_days" mapstructure:"reconnect_min_days"`
	ReconnectMaxDays           int     `yaml:"reconnect_max_days" mapstructure:"reconnect_max_days"`
	DedupWindowDays            int     `yaml:"dedup_window_days" mapstructure:"dedup_window_days"`
	DefaultLimit               int     `yaml:"default_limit" mapstructure:"default_limit"`
}

// PathsConfig configures the introduction path finder.
type PathsConfig struct {
	MaxDegrees  int     `yaml:"max_degrees" mapstructure:"max_degrees"`
	MinStrength float64 `yaml:"min_strength" mapstructure:"min_strength"`
	MaxResults  int     `yaml:"max_results" mapstructure:"max_results"`
}

// BatchConfig bounds concurrent work against the store.
type BatchConfig struct {
	ChunkSize   int `yaml:"chunk_size" mapstructure:"chunk_size"`
	PauseMillis int `yaml:"pause_millis" mapstructure:"pause_millis"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NETWORK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.enabled", true)

	// Priority favors relationship strength and engagement.
	v.SetDefault("scoring.priority_weights.network_position", 0.20)
	v.SetDefault("scoring.priority_weights.relationship_strength", 0.25)
	v.SetDefault("scoring.priority_weights.professional_relevance", 0.20)
	v.SetDefault("scoring.priority_weights.mutual_connections", 0.10)
	v.SetDefault("scoring.priority_weights.engagement_patterns", 0.15)
	v.SetDefault("scoring.priority_weights.opportunity_indicators", 0.10)

	// Opportunity favors indicators and relevance.
	v.SetDefault("scoring.opportunity_weights.network_position", 0.10)
	v.SetDefault("scoring.opportunity_weights.relationship_strength", 0.10)
	v.SetDefault("scoring.opportunity_weights.professional_relevance", 0.25)
	v.SetDefault("scoring.opportunity_weights.mutual_connections", 0.10)
	v.SetDefault("scoring.opportunity_weights.engagement_patterns", 0.10)
	v.SetDefault("scoring.opportunity_weights.opportunity_indicators", 0.35)

	// Strategic value favors network position.
	v.SetDefault("scoring.strategic_weights.network_position", 0.35)
	v.SetDefault("scoring.strategic_weights.relationship_strength", 0.15)
	v.SetDefault("scoring.strategic_weights.professional_relevance", 0.20)
	v.SetDefault("scoring.strategic_weights.mutual_connections", 0.15)
	v.SetDefault("scoring.strategic_weights.engagement_patterns", 0.05)
	v.SetDefault("scoring.strategic_weights.opportunity_indicators", 0.10)

	v.SetDefault("scoring.recency_decay_days", 150)

	v.SetDefault("inference.min_confidence", 0.3)
	v.SetDefault("inference.max_per_contact", 5)
	v.SetDefault("inference.max_candidate_pool", 500)

	v.SetDefault("detector.introduction_min_confidence", 0.4)
	v.SetDefault("detector.introduction_min_strength", 0.6)
	v.SetDefault("detector.business_match_min_confidence", 0.3)
	v.SetDefault("detector.reconnect_min_days", 30)
	v.SetDefault("detector.reconnect_max_days", 730)
	v.SetDefault("detector.dedup_window_days", 7)
	v.SetDefault("detector.default_limit", 20)

	v.SetDefault("paths.max_degrees", 4)
	v.SetDefault("paths.min_strength", 0.2)
	v.SetDefault("paths.max_results", 3)

	v.SetDefault("batch.chunk_size", 5)
	v.SetDefault("batch.pause_millis", 100)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
