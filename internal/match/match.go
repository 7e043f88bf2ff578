// Package match resolves a partial company query to at most one catalog
// record by running a fixed cascade of strategies over an index snapshot.
package match

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-match/internal/index"
	"github.com/sells-group/company-match/internal/model"
	"github.com/sells-group/company-match/internal/normalize"
)

// Resolve runs the cascade against ix. The first strategy scoring at least
// p.AcceptScore wins. Otherwise the fallback runs when the policy enables it.
// A nil result with a nil error means no match. Querying an index that was
// never built fails with index.ErrNotReady.
func Resolve(ix *index.Index, q model.MatchQuery, p Policy) (*model.MatchResult, error) {
	if ix == nil {
		return nil, index.ErrNotReady
	}
	q = q.Trimmed()
	if q.IsEmpty() {
		return nil, nil
	}

	for _, s := range Cascade {
		res, err := s.Eval(ix, q, p)
		if err != nil {
			return nil, eris.Wrapf(err, "match: strategy %s", s.Name)
		}
		if res != nil && res.MatchScore.Score >= p.AcceptScore {
			res.Strategy = s.Name
			logResolved(q, res)
			return res, nil
		}
	}

	if !p.Fallback {
		return nil, nil
	}
	res, err := fallback(ix, q, p)
	if err != nil {
		return nil, eris.Wrapf(err, "match: strategy %s", StrategyFallback)
	}
	if res == nil {
		return nil, nil
	}
	res.Strategy = StrategyFallback
	logResolved(q, res)
	return res, nil
}

func logResolved(q model.MatchQuery, res *model.MatchResult) {
	zap.L().Debug("match: resolved",
		zap.String("name", q.Name),
		zap.String("website", q.Website),
		zap.String("strategy", res.Strategy),
		zap.String("domain", res.Company.Domain),
		zap.Float64("score", res.MatchScore.Score),
	)
}

// MatchedFields lists which query fields correspond to rec, in the order
// domain, phone, facebook, name.
func MatchedFields(q model.MatchQuery, rec *model.CompanyRecord) []string {
	fields := make([]string, 0, 4)
	if domainMatches(q, rec) {
		fields = append(fields, model.FieldDomain)
	}
	if phoneMatches(q, rec) {
		fields = append(fields, model.FieldPhone)
	}
	if facebookMatches(q, rec) {
		fields = append(fields, model.FieldFacebook)
	}
	if q.Name != "" {
		for _, n := range rec.Names() {
			if NameSimilar(q.Name, n) {
				fields = append(fields, model.FieldName)
				break
			}
		}
	}
	return fields
}

func domainMatches(q model.MatchQuery, rec *model.CompanyRecord) bool {
	d := normalize.Domain(q.Website)
	return d != "" && d == normalize.Domain(rec.Domain)
}

func phoneMatches(q model.MatchQuery, rec *model.CompanyRecord) bool {
	p := normalize.Phone(q.Phone)
	if p == "" {
		return false
	}
	for _, rp := range rec.PhoneNumbers {
		if normalize.Phone(rp) == p {
			return true
		}
	}
	return false
}

func facebookMatches(q model.MatchQuery, rec *model.CompanyRecord) bool {
	f := normalize.Facebook(q.Facebook)
	return f != "" && rec.SocialLinks.Facebook != "" && f == normalize.Facebook(rec.SocialLinks.Facebook)
}

// NameSimilar reports whether two names refer to the same company: equal,
// one containing the other, or sharing at least half of the shorter name's
// words. Names that normalize to nothing never match.
func NameSimilar(a, b string) bool {
	na, nb := normalize.Name(a), normalize.Name(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	wa, wb := normalize.NameTokens(na), normalize.NameTokens(nb)
	overlap := 0
	for _, w := range wa {
		if slices.Contains(wb, w) {
			overlap++
		}
	}
	return float64(overlap) >= float64(min(len(wa), len(wb)))*0.5
}
