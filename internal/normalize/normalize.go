// Package normalize canonicalizes domains, phone numbers, social handles and
// names into the comparable forms every exact match strategy relies on.
// Each function is idempotent.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/company-match/internal/model"
)

var schemePrefixes = []string{"https://", "http://"}

// platformPrefixes lists the canonical path prefixes stripped from social URLs.
var platformPrefixes = map[string][]string{
	model.PlatformFacebook:  {"facebook.com/", "fb.com/", "m.facebook.com/", "web.facebook.com/"},
	model.PlatformTwitter:   {"twitter.com/", "x.com/", "mobile.twitter.com/"},
	model.PlatformLinkedIn:  {"linkedin.com/"},
	model.PlatformInstagram: {"instagram.com/"},
	model.PlatformYouTube:   {"youtube.com/", "m.youtube.com/"},
}

var (
	nonDigitRe    = regexp.MustCompile(`\D`)
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Domain strips the scheme, a leading "www." and trailing slashes, then lower-cases.
// Stripping repeats until the value is stable so the result is idempotent.
func Domain(s string) string {
	return stripURL(strings.ToLower(strings.TrimSpace(s)), nil)
}

// Phone keeps only digits and drops the North American country code from
// 11-digit numbers that start with 1. Other lengths keep a leading 1, so
// 10-digit numbers starting with 1 stay intact and the result is idempotent.
// Extensions are therefore not aligned: "+1 555 123 4567 x12" keeps its 1.
func Phone(s string) string {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

// SocialHandle reduces a profile URL to the handle part for the given platform,
// e.g. "https://www.facebook.com/Acme/" becomes "acme".
func SocialHandle(platform, url string) string {
	s := strings.ToLower(strings.TrimSpace(url))
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return stripURL(s, platformPrefixes[platform])
}

// Facebook is SocialHandle for the facebook platform.
func Facebook(url string) string {
	return SocialHandle(model.PlatformFacebook, url)
}

// Name lower-cases, folds accents, removes punctuation and collapses whitespace.
func Name(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}
	s = punctuationRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NameTokens splits a normalized name into words.
func NameTokens(s string) []string {
	n := Name(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

func stripURL(s string, extra []string) string {
	for {
		before := s
		for _, p := range schemePrefixes {
			s = strings.TrimPrefix(s, p)
		}
		s = strings.TrimPrefix(s, "www.")
		s = strings.TrimSuffix(s, "/")
		for _, p := range extra {
			s = strings.TrimPrefix(s, p)
		}
		if s == before {
			return s
		}
	}
}
