// Package intent classifies raw queries into a structured Intent.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/pkg/llm"
)

const classifySystemPrompt = `Classify entity-search queries. Respond with a valid JSON object:
{"entityType": "<people|investors|startups|flights|trains|places|datasets|events>", "filters": {"skills": [], "location": "", "radius_km": 0, "fundingStage": "", "dateRange": ""}}
Only include filter fields you are confident about.`

const classifyUserPrompt = `Query: %s`

// Parser turns raw queries into Intents. The keyword heuristic always
// succeeds; when a classifier client is configured its output is merged
// over the heuristic result, but a classifier failure never fails the
// request.
type Parser struct {
	rules   Rules
	client  llm.Client
	model   string
	timeout time.Duration
}

// NewParser creates a heuristic-only Parser.
func NewParser(rules Rules) *Parser {
	return &Parser{rules: rules, timeout: 4 * time.Second}
}

// WithClassifier enables external refinement through the given client.
func (p *Parser) WithClassifier(client llm.Client, model string, timeout time.Duration) *Parser {
	p.client = client
	p.model = model
	if timeout > 0 {
		p.timeout = timeout
	}
	return p
}

// Parse classifies rawQuery. It never fails: the heuristic result is the
// floor, and external refinement is best-effort with a bounded timeout
// and no retries.
func (p *Parser) Parse(ctx context.Context, rawQuery string) model.Intent {
	result := p.heuristic(rawQuery)

	if p.client == nil {
		return result
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.client.Complete(cctx, llm.Request{
		Model:     p.model,
		MaxTokens: 256,
		System:    classifySystemPrompt,
		Prompt:    fmt.Sprintf(classifyUserPrompt, rawQuery),
	})
	if err != nil {
		zap.L().Debug("intent: classifier call failed, keeping heuristic",
			zap.String("query", rawQuery),
			zap.Error(err),
		)
		return result
	}

	external, ok := parseIntentJSON(text)
	if !ok {
		zap.L().Debug("intent: classifier returned malformed JSON, keeping heuristic",
			zap.String("query", rawQuery),
		)
		return result
	}

	return merge(result, external)
}

// heuristic classifies by signal words and extracts skills and location.
// Cheap, deterministic, always succeeds.
func (p *Parser) heuristic(rawQuery string) model.Intent {
	lower := strings.ToLower(rawQuery)

	entityType := model.EntityPeople
	for _, et := range model.AllEntityTypes() {
		if matchesAny(lower, p.rules.EntitySignals[et]) {
			entityType = et
			break
		}
	}

	var skills []string
	for _, kw := range p.rules.Skills {
		if strings.Contains(lower, kw) {
			skills = append(skills, kw)
		}
	}

	return model.Intent{
		EntityType: entityType,
		Filters: model.Filters{
			Skills:   skills,
			Location: extractLocation(rawQuery),
		},
		Raw: rawQuery,
	}
}

var locationPattern = regexp.MustCompile(`(?i)\b(?:in|near|at)\s+([A-Z][A-Za-z .'-]{1,40})`)

// extractLocation captures a place name after "in", "near" or "at".
func extractLocation(rawQuery string) string {
	m := locationPattern.FindStringSubmatch(rawQuery)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func matchesAny(lower string, signals []string) bool {
	for _, s := range signals {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// parseIntentJSON decodes the classifier's response, tolerating markdown
// fences around the JSON object.
func parseIntentJSON(text string) (model.Intent, bool) {
	text = cleanJSON(text)

	var out struct {
		EntityType string        `json:"entityType"`
		Filters    model.Filters `json:"filters"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return model.Intent{}, false
	}

	et := model.EntityType(strings.ToLower(out.EntityType))
	if et != "" && !model.ValidEntityType(et) {
		return model.Intent{}, false
	}
	return model.Intent{EntityType: et, Filters: out.Filters}, true
}

// merge overlays non-zero external fields on the heuristic intent.
func merge(base, external model.Intent) model.Intent {
	if external.EntityType != "" {
		base.EntityType = external.EntityType
	}
	if len(external.Filters.Skills) > 0 {
		base.Filters.Skills = external.Filters.Skills
	}
	if external.Filters.Location != "" {
		base.Filters.Location = external.Filters.Location
	}
	if external.Filters.RadiusKM > 0 {
		base.Filters.RadiusKM = external.Filters.RadiusKM
	}
	if external.Filters.FundingStage != "" {
		base.Filters.FundingStage = external.Filters.FundingStage
	}
	if external.Filters.DateRange != "" {
		base.Filters.DateRange = external.Filters.DateRange
	}
	return base
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
