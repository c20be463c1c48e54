package search

// Event names, in stream vocabulary order.
const (
	EventInit      = "init"
	EventError     = "error"
	EventIntent    = "intent"
	EventProviders = "providers"
	EventCached    = "cached"
	EventColumns   = "columns"
	EventRecord    = "record"
	EventUpdate    = "update"
	EventDone      = "done"
)

// Event is one named stream event with a JSON-marshalable payload.
type Event struct {
	Name string
	Data any
}

// InitPayload opens every stream.
type InitPayload struct {
	Q string `json:"q"`
}

// ErrorPayload reports the only caller-visible failure: a missing query.
type ErrorPayload struct {
	Error string `json:"error"`
}

// ProvidersPayload announces the selected provider set.
type ProvidersPayload struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

// CachedPayload precedes a cache-hit replay.
type CachedPayload struct {
	Total int `json:"total"`
}

// ColumnsPayload carries the inferred result schema.
type ColumnsPayload struct {
	Columns []string `json:"columns"`
}

// DonePayload terminates the stream.
type DonePayload struct {
	Total  int  `json:"total"`
	Cached bool `json:"cached"`
}
