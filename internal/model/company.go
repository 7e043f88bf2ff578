// Package model defines the catalog, crawl and match types shared across the resolver.
package model

// SocialLinks holds one profile URL per known platform plus any other social URLs.
type SocialLinks struct {
	Facebook  string   `json:"facebook,omitempty"`
	Twitter   string   `json:"twitter,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty"`
	Instagram string   `json:"instagram,omitempty"`
	YouTube   string   `json:"youtube,omitempty"`
	Other     []string `json:"other,omitempty"`
}

// Known social platforms.
const (
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformInstagram = "instagram"
	PlatformYouTube   = "youtube"
)

// Platforms lists the named platforms in a stable order.
var Platforms = []string{
	PlatformFacebook,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformInstagram,
	PlatformYouTube,
}

// Get returns the URL stored for a named platform.
func (s SocialLinks) Get(platform string) string {
	switch platform {
	case PlatformFacebook:
		return s.Facebook
	case PlatformTwitter:
		return s.Twitter
	case PlatformLinkedIn:
		return s.LinkedIn
	case PlatformInstagram:
		return s.Instagram
	case PlatformYouTube:
		return s.YouTube
	default:
		return ""
	}
}

// Set stores a URL for a named platform. Unknown platforms are ignored.
func (s *SocialLinks) Set(platform, url string) {
	switch platform {
	case PlatformFacebook:
		s.Facebook = url
	case PlatformTwitter:
		s.Twitter = url
	case PlatformLinkedIn:
		s.LinkedIn = url
	case PlatformInstagram:
		s.Instagram = url
	case PlatformYouTube:
		s.YouTube = url
	}
}

// IsEmpty reports whether no platform URL and no other link is present.
func (s SocialLinks) IsEmpty() bool {
	for _, p := range Platforms {
		if s.Get(p) != "" {
			return false
		}
	}
	return len(s.Other) == 0
}

// CompanyRecord is the canonical catalog entity. Domain is its identity;
// every other field is best-effort.
type CompanyRecord struct { //nolint:revive // stutters but reads well at call sites
	Domain         string      `json:"domain"`
	CommercialName string      `json:"company_commercial_name,omitempty"`
	LegalName      string      `json:"company_legal_name,omitempty"`
	AllNames       string      `json:"company_all_available_names,omitempty"`
	PhoneNumbers   []string    `json:"phone_numbers,omitempty"`
	SocialLinks    SocialLinks `json:"social_media_links"`
	Address        string      `json:"address,omitempty"`
	Location       string      `json:"location,omitempty"`
}

// Names returns the non-empty name fields in priority order.
func (c CompanyRecord) Names() []string {
	var names []string
	for _, n := range []string{c.CommercialName, c.LegalName, c.AllNames} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Clone returns a deep copy so fused snapshots never share slices with older ones.
func (c CompanyRecord) Clone() CompanyRecord {
	out := c
	if c.PhoneNumbers != nil {
		out.PhoneNumbers = append([]string(nil), c.PhoneNumbers...)
	}
	if c.SocialLinks.Other != nil {
		out.SocialLinks.Other = append([]string(nil), c.SocialLinks.Other...)
	}
	return out
}
