package model

import "time"

// Credentials identify one login against the backend.
// Password is held in memory for a single request and never persisted.
type Credentials struct {
	URL      string `json:"url"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// Domain is a backend filter expression: a sequence of [field, operator, value]
// triples, optionally interleaved with prefix logical operators ("&", "|", "!").
// It is opaque to the pipeline and passed to the backend verbatim.
type Domain []interface{}

// QuerySpec describes what to fetch
type QuerySpec struct {
	Model  string   `json:"model"`
	Domain Domain   `json:"domain"`
	Fields []string `json:"fields"`
}

// FetchStrategy selects how the fetcher paginates
type FetchStrategy string

const (
	// SearchThenRead calls search for a page of ids, then read for those ids.
	SearchThenRead FetchStrategy = "search_then_read"
	// SearchRead calls the combined search_read per page.
	SearchRead FetchStrategy = "search_read"
)

// ReferencePolicy decides which ids of an id-only reference field are resolved
type ReferencePolicy string

const (
	// AllIDs resolves and joins every id of the field.
	AllIDs ReferencePolicy = "all_ids"
	// FirstID resolves only the first id and drops the rest.
	FirstID ReferencePolicy = "first_id"
)

// ReferenceConfig describes one foreign entity kind: the fields whose bare id
// lists point at Model, resolved to LabelField through one batched lookup.
type ReferenceConfig struct {
	Model      string   `json:"model" mapstructure:"model"`
	LabelField string   `json:"labelField" mapstructure:"label_field"`
	Fields     []string `json:"fields" mapstructure:"fields"`
}

// JoinConfig describes the auxiliary related-entity lookup: for each exported
// record, the label of the first Model record whose ForeignKey points at it
// is written to the Target column.
type JoinConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Model      string `json:"model" mapstructure:"model"`
	ForeignKey string `json:"foreignKey" mapstructure:"foreign_key"`
	LabelField string `json:"labelField" mapstructure:"label_field"`
	Target     string `json:"target" mapstructure:"target"`
}

// ExportRequest is the input of one export run
type ExportRequest struct {
	Credentials
	Query      QuerySpec     `json:"query"`
	BatchSize  int           `json:"batchSize"`  // optional, defaults to the configured batch size
	Strategy   FetchStrategy `json:"strategy"`   // optional, defaults to the configured strategy
	FileName   string        `json:"fileName"`   // optional, e.g. Extracao.xlsx
	FilterName string        `json:"filterName"` // saved filter the query came from, if any
}

// SavedFilter is a named preset of domain and field list, stored as the text
// the user typed so it can be re-applied verbatim.
type SavedFilter struct {
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	Fields    string    `json:"fields"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
