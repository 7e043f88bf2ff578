package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSocialLinks_GetSet(t *testing.T) {
	var s SocialLinks
	for _, p := range Platforms {
		s.Set(p, "https://"+p+".com/acme")
	}
	for _, p := range Platforms {
		assert.Equal(t, "https://"+p+".com/acme", s.Get(p))
	}

	s.Set("myspace", "https://myspace.com/acme")
	assert.Empty(t, s.Get("myspace"))
}

func TestSocialLinks_IsEmpty(t *testing.T) {
	assert.True(t, SocialLinks{}.IsEmpty())
	assert.True(t, SocialLinks{Other: []string{}}.IsEmpty())
	assert.False(t, SocialLinks{LinkedIn: "https://linkedin.com/company/acme"}.IsEmpty())
	assert.False(t, SocialLinks{Other: []string{"https://tiktok.com/@acme"}}.IsEmpty())
}

func TestCompanyRecord_Names(t *testing.T) {
	c := CompanyRecord{CommercialName: "Acme", AllNames: "Acme | Acme Holdings"}
	assert.Equal(t, []string{"Acme", "Acme | Acme Holdings"}, c.Names())
	assert.Empty(t, CompanyRecord{Domain: "acme.com"}.Names())
}

func TestCompanyRecord_CloneIsDeep(t *testing.T) {
	orig := CompanyRecord{
		Domain:       "acme.com",
		PhoneNumbers: []string{"555-0000"},
		SocialLinks:  SocialLinks{Other: []string{"https://reddit.com/r/acme"}},
	}
	c := orig.Clone()
	c.PhoneNumbers[0] = "changed"
	c.SocialLinks.Other[0] = "changed"

	assert.Equal(t, "555-0000", orig.PhoneNumbers[0])
	assert.Equal(t, "https://reddit.com/r/acme", orig.SocialLinks.Other[0])
}

func TestMatchQuery_IsEmpty(t *testing.T) {
	assert.True(t, MatchQuery{}.IsEmpty())
	assert.True(t, MatchQuery{Name: "   ", Phone: "\t"}.IsEmpty())
	assert.False(t, MatchQuery{Facebook: "facebook.com/acme"}.IsEmpty())
}
