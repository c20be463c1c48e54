package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/unisearch/internal/model"
)

func fullRecord() model.UniversalRecord {
	return model.UniversalRecord{
		ID:       "r1",
		Name:     "Ada Lovelace",
		Headline: "analyst",
		URL:      "https://example.com/ada",
	}
}

func TestScore_NoMetrics_AllCoreFields(t *testing.T) {
	s := New(DefaultConfig())

	// completeness=1, authority=floor 0.2 → 0.5*1 + 0.5*0.2
	got := s.Score(fullRecord())
	assert.Equal(t, 0.6, got)
}

func TestScore_Completeness(t *testing.T) {
	s := New(DefaultConfig())

	rec := fullRecord()
	rec.Headline = ""
	rec.URL = ""
	// completeness=1/3, authority=0.2 → 0.5/3 + 0.1 = 0.2667
	assert.Equal(t, 0.2667, s.Score(rec))
}

func TestScore_AuthorityStrongestSignalWins(t *testing.T) {
	s := New(DefaultConfig())

	rec := fullRecord()
	rec.Metrics = map[string]float64{
		"followers": 9,      // log10(10)/4 + 0.2 = 0.45
		"citations": 99999,  // capped at 0.9
		"stars":     0,      // log10(1)/4 + 0.2 = 0.2
	}
	// base = 0.5*1 + 0.5*0.9 = 0.95; signals are not summed
	assert.Equal(t, 0.95, s.Score(rec))
}

func TestScore_UnknownMetricsIgnored(t *testing.T) {
	s := New(DefaultConfig())

	rec := fullRecord()
	rec.Metrics = map[string]float64{"downloads": 1e9}
	assert.Equal(t, 0.6, s.Score(rec))
}

func TestScore_ProximityBlending(t *testing.T) {
	s := New(DefaultConfig())

	near := fullRecord()
	near.Attributes = map[string]model.AttrValue{"distance_km": model.Num(0)}
	far := fullRecord()
	far.Attributes = map[string]model.AttrValue{"distance_km": model.Num(100)}

	// 0 km → proximity 1.0: 0.8*0.6 + 0.2*1 = 0.68
	assert.Equal(t, 0.68, s.Score(near))
	// 100 km → proximity 0.2: 0.8*0.6 + 0.2*0.2 = 0.52
	assert.Equal(t, 0.52, s.Score(far))
	assert.Greater(t, s.Score(near), s.Score(far))
}

func TestScore_ProximityAbsent(t *testing.T) {
	s := New(DefaultConfig())

	rec := fullRecord()
	rec.Attributes = map[string]model.AttrValue{"distance_km": model.Str("n/a")}
	// Non-numeric distance plays no role.
	assert.Equal(t, 0.6, s.Score(rec))
}

func TestScore_Rounding(t *testing.T) {
	s := New(DefaultConfig())

	rec := fullRecord()
	rec.Metrics = map[string]float64{"followers": 2}
	// authority = log10(3)/4 + 0.2 = 0.319280...; base = 0.5 + 0.5*authority
	got := s.Score(rec)
	assert.Equal(t, 0.6596, got)
}

func TestScore_ConfigurableWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CompletenessWeight = 1
	cfg.AuthorityWeight = 0
	s := New(cfg)

	assert.Equal(t, 1.0, s.Score(fullRecord()))
}
