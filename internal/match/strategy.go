package match

import (
	"strings"

	"github.com/sells-group/company-match/internal/index"
	"github.com/sells-group/company-match/internal/model"
	"github.com/sells-group/company-match/internal/normalize"
)

// Strategy names.
const (
	StrategyExactDomain   = "exact_domain"
	StrategyExactPhone    = "exact_phone"
	StrategyExactFacebook = "exact_facebook"
	StrategyFuzzyName     = "fuzzy_name"
	StrategyCombined      = "combined"
	StrategyFallback      = "fallback"
)

// Exact-match bonuses added to the combined score numerator and weight.
const (
	domainBonus   = 0.30
	phoneBonus    = 0.25
	facebookBonus = 0.20
)

// Fixed scores of the exact strategies.
const (
	exactDomainScore   = 1.0
	exactPhoneScore    = 0.95
	exactFacebookScore = 0.90
)

// Evaluator scores one query against an index snapshot. A nil result means
// the strategy does not apply or found nothing.
type Evaluator func(ix *index.Index, q model.MatchQuery, p Policy) (*model.MatchResult, error)

// Strategy is one named step of the cascade.
type Strategy struct {
	Name string
	Eval Evaluator
}

// Cascade is the fixed evaluation order. The fallback is not part of it.
var Cascade = []Strategy{
	{Name: StrategyExactDomain, Eval: exactDomain},
	{Name: StrategyExactPhone, Eval: exactPhone},
	{Name: StrategyExactFacebook, Eval: exactFacebook},
	{Name: StrategyFuzzyName, Eval: fuzzyName},
	{Name: StrategyCombined, Eval: combined},
}

func exactDomain(ix *index.Index, q model.MatchQuery, _ Policy) (*model.MatchResult, error) {
	if q.Website == "" {
		return nil, nil
	}
	rec, err := ix.ByDomain(q.Website)
	if err != nil || rec == nil {
		return nil, err
	}
	return newResult(rec, exactDomainScore, model.ConfidenceHigh, model.FieldDomain), nil
}

func exactPhone(ix *index.Index, q model.MatchQuery, _ Policy) (*model.MatchResult, error) {
	if q.Phone == "" {
		return nil, nil
	}
	rec, err := ix.ByPhone(q.Phone)
	if err != nil || rec == nil {
		return nil, err
	}
	return newResult(rec, exactPhoneScore, model.ConfidenceHigh, model.FieldPhone), nil
}

func exactFacebook(ix *index.Index, q model.MatchQuery, _ Policy) (*model.MatchResult, error) {
	if q.Facebook == "" {
		return nil, nil
	}
	rec, err := ix.ByFacebook(q.Facebook)
	if err != nil || rec == nil {
		return nil, err
	}
	return newResult(rec, exactFacebookScore, model.ConfidenceHigh, model.FieldFacebook), nil
}

func fuzzyName(ix *index.Index, q model.MatchQuery, p Policy) (*model.MatchResult, error) {
	if q.Name == "" {
		return nil, nil
	}
	cands, err := ix.Search(q.Name, index.NameFields...)
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	best := cands[0]
	if best.Dissimilarity > p.FuzzyNameMax {
		return nil, nil
	}
	conf := model.ConfidenceMedium
	if best.Dissimilarity <= p.FuzzyNameHigh {
		conf = model.ConfidenceHigh
	}
	return newResult(best.Record, 1-best.Dissimilarity, conf, model.FieldName), nil
}

func combined(ix *index.Index, q model.MatchQuery, _ Policy) (*model.MatchResult, error) {
	website := ""
	if q.Website != "" {
		website = normalize.Domain(q.Website)
	}
	query := joinPresent(q.Name, website, q.Phone, q.Facebook)
	if query == "" {
		return nil, nil
	}
	cands, err := ix.Search(query)
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	best := cands[0]

	score, weight := 1-best.Dissimilarity, 1.0
	if domainMatches(q, best.Record) {
		score += domainBonus
		weight += domainBonus
	}
	if phoneMatches(q, best.Record) {
		score += phoneBonus
		weight += phoneBonus
	}
	if facebookMatches(q, best.Record) {
		score += facebookBonus
		weight += facebookBonus
	}
	score = min(1.0, score/weight)

	return newResult(best.Record, score, ConfidenceFor(score), MatchedFields(q, best.Record)...), nil
}

// fallback returns the closest lexical candidate for the whole query, scored
// no lower than the policy floor and always low confidence.
func fallback(ix *index.Index, q model.MatchQuery, p Policy) (*model.MatchResult, error) {
	query := joinPresent(q.Name, q.Website, q.Phone, q.Facebook)
	if query == "" {
		return nil, nil
	}
	cands, err := ix.Search(query)
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	best := cands[0]
	score := max(p.FallbackFloor, 1-best.Dissimilarity)
	return newResult(best.Record, score, model.ConfidenceLow, MatchedFields(q, best.Record)...), nil
}

// ConfidenceFor maps a combined score onto its confidence tier.
func ConfidenceFor(score float64) model.Confidence {
	switch {
	case score >= 0.8:
		return model.ConfidenceHigh
	case score >= 0.6:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func newResult(rec *model.CompanyRecord, score float64, conf model.Confidence, fields ...string) *model.MatchResult {
	matched := make([]string, 0, len(fields))
	matched = append(matched, fields...)
	return &model.MatchResult{
		Company: rec.Clone(),
		MatchScore: model.MatchScore{
			Score:         score,
			MatchedFields: matched,
			Confidence:    conf,
		},
	}
}

func joinPresent(parts ...string) string {
	var present []string
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, " ")
}
