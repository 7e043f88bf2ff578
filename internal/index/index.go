// Package index builds the weighted approximate-match index over a catalog
// snapshot. An Index is immutable once built; rebuilding means building a new
// one and swapping the reference.
package index

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-match/internal/model"
	"github.com/sells-group/company-match/internal/normalize"
)

// ErrNotReady is returned by every lookup on an index that was never built.
var ErrNotReady = eris.New("index: not ready")

// Field names an indexed record attribute.
type Field string

// Indexed fields.
const (
	FieldCommercialName Field = "company_commercial_name"
	FieldLegalName      Field = "company_legal_name"
	FieldAllNames       Field = "company_all_available_names"
	FieldDomain         Field = "domain"
	FieldPhoneNumbers   Field = "phone_numbers"
	FieldFacebook       Field = "social_media_links.facebook"
)

// NameFields are the name-bearing fields.
var NameFields = []Field{FieldCommercialName, FieldLegalName, FieldAllNames}

// DefaultThreshold is the dissimilarity ceiling applied to candidates.
const DefaultThreshold = 0.4

// Key weights one field. A higher weight pulls a record's dissimilarity
// lower when that field matches.
type Key struct {
	Field  Field
	Weight float64
}

// Options configures a build.
type Options struct {
	Keys      []Key
	Threshold float64
}

// DefaultKeys returns the standard field weights.
func DefaultKeys() []Key {
	return []Key{
		{Field: FieldCommercialName, Weight: 0.4},
		{Field: FieldLegalName, Weight: 0.3},
		{Field: FieldAllNames, Weight: 0.3},
		{Field: FieldDomain, Weight: 0.8},
		{Field: FieldPhoneNumbers, Weight: 0.9},
		{Field: FieldFacebook, Weight: 0.7},
	}
}

// DefaultOptions returns DefaultKeys with DefaultThreshold.
func DefaultOptions() Options {
	return Options{Keys: DefaultKeys(), Threshold: DefaultThreshold}
}

// Candidate is one search hit. Record points into the index snapshot and
// must be treated as read-only.
type Candidate struct {
	Record        *model.CompanyRecord
	Position      int
	Dissimilarity float64
	Fields        []Field
}

// Index is a searchable snapshot of the catalog.
type Index struct {
	records   []model.CompanyRecord
	texts     []map[Field][][]rune
	keys      []Key
	threshold float64

	byDomain   map[string]int
	byPhone    map[string]int
	byFacebook map[string]int

	builtAt time.Time
}

// Build indexes a copy of records. The caller keeps ownership of the input.
func Build(records []model.CompanyRecord, opts Options) *Index {
	if len(opts.Keys) == 0 {
		opts.Keys = DefaultKeys()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}

	var keys []Key
	for _, k := range opts.Keys {
		if k.Weight > 0 {
			keys = append(keys, k)
		}
	}

	ix := &Index{
		records:    make([]model.CompanyRecord, len(records)),
		texts:      make([]map[Field][][]rune, len(records)),
		keys:       keys,
		threshold:  opts.Threshold,
		byDomain:   make(map[string]int, len(records)),
		byPhone:    make(map[string]int),
		byFacebook: make(map[string]int),
		builtAt:    time.Now().UTC(),
	}

	for i, r := range records {
		rec := r.Clone()
		ix.records[i] = rec

		texts := make(map[Field][][]rune, len(ix.keys))
		for _, k := range ix.keys {
			for _, v := range fieldValues(rec, k.Field) {
				texts[k.Field] = append(texts[k.Field], []rune(strings.ToLower(v)))
			}
		}
		ix.texts[i] = texts

		// First record wins for every exact key, matching a front-to-back scan.
		addFirst(ix.byDomain, normalize.Domain(rec.Domain), i)
		for _, p := range rec.PhoneNumbers {
			addFirst(ix.byPhone, normalize.Phone(p), i)
		}
		if rec.SocialLinks.Facebook != "" {
			addFirst(ix.byFacebook, normalize.Facebook(rec.SocialLinks.Facebook), i)
		}
	}

	return ix
}

func addFirst(m map[string]int, key string, pos int) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = pos
	}
}

func fieldValues(r model.CompanyRecord, f Field) []string {
	var vals []string
	switch f {
	case FieldCommercialName:
		vals = []string{r.CommercialName}
	case FieldLegalName:
		vals = []string{r.LegalName}
	case FieldAllNames:
		vals = []string{r.AllNames}
	case FieldDomain:
		vals = []string{r.Domain}
	case FieldPhoneNumbers:
		vals = r.PhoneNumbers
	case FieldFacebook:
		vals = []string{r.SocialLinks.Facebook}
	}
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of indexed records. A nil index has none.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// BuiltAt returns when the snapshot was built. A nil index returns the zero time.
func (ix *Index) BuiltAt() time.Time {
	if ix == nil {
		return time.Time{}
	}
	return ix.builtAt
}

// Records returns the snapshot records in catalog order. Callers must not modify them.
func (ix *Index) Records() ([]model.CompanyRecord, error) {
	if ix == nil {
		return nil, ErrNotReady
	}
	return ix.records, nil
}

// ByDomain returns the first record whose normalized domain equals the normalized input.
func (ix *Index) ByDomain(domain string) (*model.CompanyRecord, error) {
	if ix == nil {
		return nil, ErrNotReady
	}
	return ix.lookup(ix.byDomain, normalize.Domain(domain)), nil
}

// ByPhone returns the first record holding a phone number equal to the input once normalized.
func (ix *Index) ByPhone(phone string) (*model.CompanyRecord, error) {
	if ix == nil {
		return nil, ErrNotReady
	}
	return ix.lookup(ix.byPhone, normalize.Phone(phone)), nil
}

// ByFacebook returns the first record whose facebook handle equals the input's.
func (ix *Index) ByFacebook(url string) (*model.CompanyRecord, error) {
	if ix == nil {
		return nil, ErrNotReady
	}
	return ix.lookup(ix.byFacebook, normalize.Facebook(url)), nil
}

func (ix *Index) lookup(m map[string]int, key string) *model.CompanyRecord {
	if key == "" {
		return nil
	}
	pos, ok := m[key]
	if !ok {
		return nil
	}
	return &ix.records[pos]
}

// Search scores every record against query and returns the candidates that
// hit at least one field, best first. Ties keep catalog order. When fields is
// non-empty only those keys are considered.
//
// A field hits when a query chunk is within the threshold of it. Key weights are
// normalized over the searched keys, and a record's dissimilarity is the
// product of score^weight over its hit fields, so 0 means identical.
func (ix *Index) Search(query string, fields ...Field) ([]Candidate, error) {
	if ix == nil {
		return nil, ErrNotReady
	}
	pattern := []rune(strings.ToLower(strings.TrimSpace(query)))
	if len(pattern) == 0 {
		return nil, nil
	}
	chunks := chunkPattern(pattern)
	keys := normalizeWeights(ix.keysFor(fields))

	var out []Candidate
	for i, texts := range ix.texts {
		total := 1.0
		var hit []Field
		for _, k := range keys {
			best, ok := 1.0, false
			for _, text := range texts[k.Field] {
				if s, matched := scoreText(chunks, text, ix.threshold); matched && s < best {
					best, ok = s, true
				}
			}
			if !ok {
				continue
			}
			total *= math.Pow(best, k.Weight)
			hit = append(hit, k.Field)
		}
		if len(hit) == 0 {
			continue
		}
		out = append(out, Candidate{
			Record:        &ix.records[i],
			Position:      i,
			Dissimilarity: total,
			Fields:        hit,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Dissimilarity < out[b].Dissimilarity
	})
	return out, nil
}

// normalizeWeights rescales key weights to sum to 1.
func normalizeWeights(keys []Key) []Key {
	var sum float64
	for _, k := range keys {
		sum += k.Weight
	}
	if sum <= 0 {
		return nil
	}
	out := make([]Key, len(keys))
	for i, k := range keys {
		out[i] = Key{Field: k.Field, Weight: k.Weight / sum}
	}
	return out
}

func (ix *Index) keysFor(fields []Field) []Key {
	if len(fields) == 0 {
		return ix.keys
	}
	var keys []Key
	for _, k := range ix.keys {
		for _, f := range fields {
			if k.Field == f {
				keys = append(keys, k)
				break
			}
		}
	}
	return keys
}
