package match

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/company-match/internal/index"
)

// Policy holds the tunable thresholds of the cascade and the index weights.
type Policy struct {
	// AcceptScore is the score at which a strategy's result ends the cascade.
	AcceptScore float64 `yaml:"accept_score"`
	// FuzzyNameMax is the largest dissimilarity the fuzzy name strategy accepts.
	FuzzyNameMax float64 `yaml:"fuzzy_name_max"`
	// FuzzyNameHigh is the dissimilarity at or below which a fuzzy name hit is high confidence.
	FuzzyNameHigh float64 `yaml:"fuzzy_name_high"`
	// Fallback enables the weak lexical fallback. It trades precision for recall:
	// its results can have no semantically matching field at all.
	Fallback      bool    `yaml:"fallback"`
	FallbackFloor float64 `yaml:"fallback_floor"`
	Threshold     float64 `yaml:"threshold"`
	Weights       Weights `yaml:"weights"`
}

// Weights are the per-field index weights.
type Weights struct {
	CommercialName float64 `yaml:"company_commercial_name"`
	LegalName      float64 `yaml:"company_legal_name"`
	AllNames       float64 `yaml:"company_all_available_names"`
	Domain         float64 `yaml:"domain"`
	PhoneNumbers   float64 `yaml:"phone_numbers"`
	Facebook       float64 `yaml:"facebook"`
}

// DefaultPolicy returns the standard cascade policy.
func DefaultPolicy() Policy {
	return Policy{
		AcceptScore:   0.7,
		FuzzyNameMax:  0.3,
		FuzzyNameHigh: 0.1,
		Fallback:      true,
		FallbackFloor: 0.1,
		Threshold:     index.DefaultThreshold,
		Weights: Weights{
			CommercialName: 0.4,
			LegalName:      0.3,
			AllNames:       0.3,
			Domain:         0.8,
			PhoneNumbers:   0.9,
			Facebook:       0.7,
		},
	}
}

// IndexOptions returns the index build options for this policy.
func (p Policy) IndexOptions() index.Options {
	w := p.Weights
	return index.Options{
		Keys: []index.Key{
			{Field: index.FieldCommercialName, Weight: w.CommercialName},
			{Field: index.FieldLegalName, Weight: w.LegalName},
			{Field: index.FieldAllNames, Weight: w.AllNames},
			{Field: index.FieldDomain, Weight: w.Domain},
			{Field: index.FieldPhoneNumbers, Weight: w.PhoneNumbers},
			{Field: index.FieldFacebook, Weight: w.Facebook},
		},
		Threshold: p.Threshold,
	}
}

// Validate checks that every threshold is within range.
func (p Policy) Validate() error {
	if p.AcceptScore <= 0 || p.AcceptScore > 1 {
		return eris.Errorf("match: accept_score %v out of range (0,1]", p.AcceptScore)
	}
	if p.FuzzyNameMax < 0 || p.FuzzyNameMax > 1 {
		return eris.Errorf("match: fuzzy_name_max %v out of range [0,1]", p.FuzzyNameMax)
	}
	if p.FuzzyNameHigh < 0 || p.FuzzyNameHigh > p.FuzzyNameMax {
		return eris.Errorf("match: fuzzy_name_high %v out of range [0,%v]", p.FuzzyNameHigh, p.FuzzyNameMax)
	}
	if p.FallbackFloor < 0 || p.FallbackFloor > 1 {
		return eris.Errorf("match: fallback_floor %v out of range [0,1]", p.FallbackFloor)
	}
	if p.Threshold <= 0 || p.Threshold > 1 {
		return eris.Errorf("match: threshold %v out of range (0,1]", p.Threshold)
	}
	w := p.Weights
	for _, v := range []float64{w.CommercialName, w.LegalName, w.AllNames, w.Domain, w.PhoneNumbers, w.Facebook} {
		if v < 0 {
			return eris.Errorf("match: negative field weight %v", v)
		}
	}
	return nil
}

// LoadPolicy reads a policy file and applies it over base. Keys absent from
// the file keep their base values.
func LoadPolicy(path string, base Policy) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, eris.Wrapf(err, "match: read policy %s", path)
	}

	// The YAML has a top-level "policy" key
	wrapper := struct {
		Policy Policy `yaml:"policy"`
	}{Policy: base}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Policy{}, eris.Wrap(err, "match: parse policy")
	}

	if err := wrapper.Policy.Validate(); err != nil {
		return Policy{}, err
	}
	return wrapper.Policy, nil
}
