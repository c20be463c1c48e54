package model

import "time"

// EntityType is the closed-set classification of what a query searches for.
type EntityType string

const (
	EntityPeople    EntityType = "people"
	EntityInvestors EntityType = "investors"
	EntityStartups  EntityType = "startups"
	EntityFlights   EntityType = "flights"
	EntityTrains    EntityType = "trains"
	EntityPlaces    EntityType = "places"
	EntityDatasets  EntityType = "datasets"
	EntityEvents    EntityType = "events"
)

// AllEntityTypes returns every valid entity type.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityPeople, EntityInvestors, EntityStartups, EntityFlights,
		EntityTrains, EntityPlaces, EntityDatasets, EntityEvents,
	}
}

// ValidEntityType reports whether t is one of the closed set.
func ValidEntityType(t EntityType) bool {
	for _, e := range AllEntityTypes() {
		if e == t {
			return true
		}
	}
	return false
}

// UniversalRecord is the normalized shape every provider output becomes.
// ID is stable for the lifetime of one query session; URL (casefolded)
// is the dedup key when present, else ID. A record emitted to a stream
// is never re-sent whole; only attribute patches follow via enrichment.
type UniversalRecord struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Headline   string               `json:"headline,omitempty"`
	URL        string               `json:"url,omitempty"`
	Location   string               `json:"location,omitempty"`
	Provider   string               `json:"provider,omitempty"`
	Attributes map[string]AttrValue `json:"attributes,omitempty"`
	Metrics    map[string]float64   `json:"metrics,omitempty"`
	Score      float64              `json:"score"`
}

// Filters carries the structured constraints extracted from a query.
type Filters struct {
	Skills       []string `json:"skills,omitempty"`
	Location     string   `json:"location,omitempty"`
	RadiusKM     float64  `json:"radius_km,omitempty"`
	FundingStage string   `json:"fundingStage,omitempty"`
	DateRange    string   `json:"dateRange,omitempty"`
}

// Intent is the classified interpretation of a raw query. Created once
// per request, immutable thereafter.
type Intent struct {
	EntityType EntityType `json:"entityType"`
	Filters    Filters    `json:"filters"`
	Raw        string     `json:"raw"`
}

// RecordPatch is a partial UniversalRecord carried by an enrichment patch.
// Only attributes are patchable; score and identity fields never change
// after emission.
type RecordPatch struct {
	Attributes map[string]AttrValue `json:"attributes,omitempty"`
}

// EnrichmentPatch augments an already-streamed record. Consumers merge it
// by ID.
type EnrichmentPatch struct {
	ID    string      `json:"id"`
	Patch RecordPatch `json:"patch"`
}

// CacheEntry is an immutable aggregation result stored under
// "<entityType>|<casefolded trimmed query>".
type CacheEntry struct {
	Timestamp time.Time
	Records   []UniversalRecord
}
