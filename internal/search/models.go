package search

import (
	"systems-api/internal/catalog"
)

// Meta tags naming the tier that produced a result.
const (
	TypeExact    = "exact"
	TypeTrigram  = "trigram"
	TypePhonetic = "phonetic"
	TypeWildcard = "wildcard"
)

// Meta tags for outcomes that carry no candidates.
const (
	TypeIncompleteName = "incomplete_name"
	TypeNotFound       = "notfound"
)

const (
	MinQueryLength = 3

	tierLimit      = 10
	wildcardScan   = 5000
	maxPhoneticLev = 3
)

// Query is one search request. Present is false when the caller sent no
// name at all, which is distinct from an empty name.
type Query struct {
	Name    string
	Present bool
	Fast    bool
}

// Match is a catalog row produced by one tier. Exactly one of Similarity
// and Distance is set, depending on the tier.
type Match struct {
	ID64       int64
	Name       string
	Coords     catalog.Coords
	Similarity *float64
	Distance   *int
}

type Candidate struct {
	Name           string         `json:"name"`
	Similarity     *float64       `json:"similarity,omitempty"`
	Distance       *int           `json:"distance,omitempty"`
	ID64           int64          `json:"id64"`
	Coords         catalog.Coords `json:"coords"`
	PermitRequired bool           `json:"permit_required"`
	PermitName     *string        `json:"permit_name"`
}

type Meta struct {
	Name  string `json:"name,omitempty"`
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// Result is returned for matches and for "no match" outcomes alike; the
// latter carry Meta.Error and no Data.
type Result struct {
	Meta Meta        `json:"meta"`
	Data []Candidate `json:"data,omitempty"`
}

func (r *Result) Found() bool {
	return r.Meta.Error == "" && len(r.Data) > 0
}

func notFound(message string) *Result {
	return &Result{Meta: Meta{Type: TypeNotFound, Error: message}}
}
