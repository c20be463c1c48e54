package intent

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/unisearch/internal/model"
)

// Rules holds the heuristic vocabularies: signal words per entity type and
// the skill keyword list shared with enrichment. The built-in defaults are
// hand-tuned placeholders and can be overridden from a YAML file.
type Rules struct {
	EntitySignals map[model.EntityType][]string `yaml:"entity_signals"`
	Skills        []string                      `yaml:"skills"`
}

// DefaultRules returns the built-in vocabularies.
func DefaultRules() Rules {
	return Rules{
		EntitySignals: map[model.EntityType][]string{
			model.EntityInvestors: {"investor", "vc ", " vc", "venture capital", "angel", "fund manager", "lp "},
			model.EntityStartups:  {"startup", "founder", "co-founder", "seed stage", "series a", "series b", "yc batch"},
			model.EntityFlights:   {"flight", "airline", "airfare", "airport"},
			model.EntityTrains:    {"train", "railway", "rail line", "amtrak"},
			model.EntityPlaces:    {"restaurant", "cafe", "coffee shop", "bar ", "park ", "museum", "hotel", "near me", "places to"},
			model.EntityDatasets:  {"dataset", "corpus", "benchmark", "training data"},
			model.EntityEvents:    {"conference", "meetup", "hackathon", "summit", "workshop", "event"},
		},
		Skills: []string{
			"python", "javascript", "typescript", "rust", "golang", "java",
			"kotlin", "swift", "c++", "machine learning", "deep learning",
			"ai", "nlp", "computer vision", "llm", "react", "node",
			"kubernetes", "docker", "aws", "gcp", "azure", "sql",
			"postgres", "blockchain", "security", "data science",
			"robotics", "embedded",
		},
	}
}

// LoadRules reads a YAML rules file and overlays it on the defaults.
// Sections absent from the file keep their built-in values.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, eris.Wrapf(err, "intent: read rules file %s", path)
	}

	var file Rules
	if err := yaml.Unmarshal(data, &file); err != nil {
		return rules, eris.Wrapf(err, "intent: parse rules file %s", path)
	}

	for et, words := range file.EntitySignals {
		if !model.ValidEntityType(et) {
			return rules, eris.Errorf("intent: rules file: unknown entity type %q", et)
		}
		rules.EntitySignals[et] = words
	}
	if len(file.Skills) > 0 {
		rules.Skills = file.Skills
	}

	return rules, nil
}
