// Package score computes heuristic relevance scores for universal records.
package score

import (
	"math"

	"github.com/sells-group/unisearch/internal/model"
)

// Config holds the scoring weights. The defaults are hand-tuned; they are
// configurable rather than load-bearing invariants.
type Config struct {
	CompletenessWeight float64  `yaml:"completeness_weight" mapstructure:"completeness_weight"`
	AuthorityWeight    float64  `yaml:"authority_weight" mapstructure:"authority_weight"`
	AuthorityFloor     float64  `yaml:"authority_floor" mapstructure:"authority_floor"`
	AuthorityCap       float64  `yaml:"authority_cap" mapstructure:"authority_cap"`
	LogDivisor         float64  `yaml:"log_divisor" mapstructure:"log_divisor"`
	BaseWeight         float64  `yaml:"base_weight" mapstructure:"base_weight"`
	ProximityWeight    float64  `yaml:"proximity_weight" mapstructure:"proximity_weight"`
	ProximityScaleKM   float64  `yaml:"proximity_scale_km" mapstructure:"proximity_scale_km"`
	SignalMetrics      []string `yaml:"signal_metrics" mapstructure:"signal_metrics"`
}

// DefaultConfig returns the reference weights.
func DefaultConfig() Config {
	return Config{
		CompletenessWeight: 0.5,
		AuthorityWeight:    0.5,
		AuthorityFloor:     0.2,
		AuthorityCap:       0.9,
		LogDivisor:         4,
		BaseWeight:         0.8,
		ProximityWeight:    0.2,
		ProximityScaleKM:   25,
		SignalMetrics:      []string{"followers", "citations", "stars"},
	}
}

// Scorer computes relevance scores with a fixed configuration.
type Scorer struct {
	cfg Config
}

// New creates a Scorer. Zero-valued config fields fall back to defaults.
func New(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.CompletenessWeight == 0 && cfg.AuthorityWeight == 0 {
		cfg.CompletenessWeight = def.CompletenessWeight
		cfg.AuthorityWeight = def.AuthorityWeight
	}
	if cfg.AuthorityFloor == 0 {
		cfg.AuthorityFloor = def.AuthorityFloor
	}
	if cfg.AuthorityCap == 0 {
		cfg.AuthorityCap = def.AuthorityCap
	}
	if cfg.LogDivisor == 0 {
		cfg.LogDivisor = def.LogDivisor
	}
	if cfg.BaseWeight == 0 && cfg.ProximityWeight == 0 {
		cfg.BaseWeight = def.BaseWeight
		cfg.ProximityWeight = def.ProximityWeight
	}
	if cfg.ProximityScaleKM == 0 {
		cfg.ProximityScaleKM = def.ProximityScaleKM
	}
	if len(cfg.SignalMetrics) == 0 {
		cfg.SignalMetrics = def.SignalMetrics
	}
	return &Scorer{cfg: cfg}
}

// Score computes the relevance score for one record, rounded to 4 decimal
// places. The score is assigned once at record creation; enrichment never
// triggers rescoring.
//
//	completeness = non-empty fraction of {name, headline, url}
//	authority    = max(floor, max over signal metrics of min(cap, log10(1+v)/4 + floor))
//	base         = 0.5*completeness + 0.5*authority
//	proximity    = min(1, 1/(1+distance_km/25))   when attributes.distance_km present
//	score        = 0.8*base + 0.2*proximity       else base
func (s *Scorer) Score(rec model.UniversalRecord) float64 {
	cfg := s.cfg

	filled := 0
	for _, f := range []string{rec.Name, rec.Headline, rec.URL} {
		if f != "" {
			filled++
		}
	}
	completeness := float64(filled) / 3

	authority := cfg.AuthorityFloor
	for _, key := range cfg.SignalMetrics {
		v, ok := rec.Metrics[key]
		if !ok || v < 0 {
			continue
		}
		factor := math.Min(cfg.AuthorityCap, math.Log10(1+v)/cfg.LogDivisor+cfg.AuthorityFloor)
		if factor > authority {
			authority = factor
		}
	}

	result := cfg.CompletenessWeight*completeness + cfg.AuthorityWeight*authority

	if dist, ok := rec.Attributes["distance_km"]; ok && dist.Kind() == model.AttrNumber {
		proximity := math.Min(1, 1/(1+dist.Float()/cfg.ProximityScaleKM))
		result = cfg.BaseWeight*result + cfg.ProximityWeight*proximity
	}

	return math.Round(result*10000) / 10000
}
