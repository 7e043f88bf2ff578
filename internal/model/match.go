package model

import "strings"

// MatchQuery is the partial, noisy input to resolve. Every field is optional.
type MatchQuery struct {
	Name     string `json:"name,omitempty"`
	Website  string `json:"website,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

// Trimmed returns the query with surrounding whitespace removed from every field.
func (q MatchQuery) Trimmed() MatchQuery {
	return MatchQuery{
		Name:     strings.TrimSpace(q.Name),
		Website:  strings.TrimSpace(q.Website),
		Phone:    strings.TrimSpace(q.Phone),
		Facebook: strings.TrimSpace(q.Facebook),
	}
}

// IsEmpty reports whether the query has no usable field.
func (q MatchQuery) IsEmpty() bool {
	t := q.Trimmed()
	return t.Name == "" && t.Website == "" && t.Phone == "" && t.Facebook == ""
}

// Confidence is a coarse bucket derived from a match score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Matched field names.
const (
	FieldDomain   = "domain"
	FieldPhone    = "phone"
	FieldFacebook = "facebook"
	FieldName     = "name"
)

// MatchScore describes how well a catalog record answers a query.
type MatchScore struct {
	Score         float64    `json:"score"`
	MatchedFields []string   `json:"matched_fields"`
	Confidence    Confidence `json:"confidence"`
}

// MatchResult is the resolved record plus its score.
type MatchResult struct {
	Company    CompanyRecord `json:"company"`
	MatchScore MatchScore    `json:"match_score"`
	Strategy   string        `json:"strategy"`
}
