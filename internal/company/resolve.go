package company

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/company-match/internal/index"
	"github.com/sells-group/company-match/internal/match"
	"github.com/sells-group/company-match/internal/model"
)

// BulkResult is the outcome of one query in a bulk run.
type BulkResult struct {
	Input model.MatchQuery   `json:"input"`
	Match *model.MatchResult `json:"match"`
	Found bool               `json:"found"`
}

// BulkReport summarizes a bulk run. MatchRate is a percentage.
type BulkReport struct {
	Total        int          `json:"total_tests"`
	MatchedCount int          `json:"successful_matches"`
	MatchRate    float64      `json:"match_rate"`
	Results      []BulkResult `json:"results"`
}

// Resolve matches one query against the current index.
func (s *Service) Resolve(q model.MatchQuery) (*model.MatchResult, error) {
	return match.Resolve(s.currentIndex(), q, s.policy)
}

// BulkResolve resolves every query against a single index snapshot. Results
// keep the input order.
func (s *Service) BulkResolve(ctx context.Context, queries []model.MatchQuery) (*BulkReport, error) {
	ix := s.currentIndex()
	if ix == nil {
		return nil, index.ErrNotReady
	}

	results := make([]BulkResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := match.Resolve(ix, q, s.policy)
			if err != nil {
				return eris.Wrapf(err, "company: bulk resolve query %d", i)
			}
			results[i] = BulkResult{Input: q, Match: res, Found: res != nil}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &BulkReport{Total: len(queries), Results: results}
	for _, r := range results {
		if r.Found {
			report.MatchedCount++
		}
	}
	if report.Total > 0 {
		report.MatchRate = float64(report.MatchedCount) / float64(report.Total) * 100
	}

	zap.L().Info("company: bulk resolve complete",
		zap.Int("total", report.Total),
		zap.Int("matched", report.MatchedCount),
		zap.Float64("match_rate", report.MatchRate),
	)
	return report, nil
}

// SampleResult is a flattened view of one bulk result.
type SampleResult struct {
	Input           model.MatchQuery `json:"input"`
	MatchFound      bool             `json:"match_found"`
	MatchScore      *float64         `json:"match_score,omitempty"`
	MatchConfidence model.Confidence `json:"match_confidence,omitempty"`
	MatchedFields   []string         `json:"matched_fields,omitempty"`
}

// BulkSummary is a bulk report with only its first results, flattened.
type BulkSummary struct {
	Total         int            `json:"total_tests"`
	MatchedCount  int            `json:"successful_matches"`
	MatchRate     float64        `json:"match_rate"`
	SampleResults []SampleResult `json:"sample_results"`
}

// Summary flattens the first n results.
func (r *BulkReport) Summary(n int) BulkSummary {
	n = min(max(n, 0), len(r.Results))
	out := BulkSummary{
		Total:         r.Total,
		MatchedCount:  r.MatchedCount,
		MatchRate:     r.MatchRate,
		SampleResults: make([]SampleResult, n),
	}
	for i, res := range r.Results[:n] {
		sr := SampleResult{Input: res.Input, MatchFound: res.Found}
		if res.Match != nil {
			score := res.Match.MatchScore.Score
			sr.MatchScore = &score
			sr.MatchConfidence = res.Match.MatchScore.Confidence
			sr.MatchedFields = res.Match.MatchScore.MatchedFields
		}
		out.SampleResults[i] = sr
	}
	return out
}
