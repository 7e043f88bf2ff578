package scrape

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/sells-group/company-match/internal/model"
)

// Extracted holds the contact data found on one page.
type Extracted struct {
	PhoneNumbers []string
	SocialLinks  model.SocialLinks
	Address      string
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\+?1[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`),
	regexp.MustCompile(`\d{3}[-.\s]\d{3}[-.\s]\d{4}`),
}

var (
	nonDigitRe    = regexp.MustCompile(`\D`)
	digitRe       = regexp.MustCompile(`\d`)
	streetAddress = regexp.MustCompile(`\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Plaza|Circle|Cir)[^.]*\d{5}`)
)

// platformHosts maps a registrable host to its named platform.
var platformHosts = map[string]string{
	"facebook.com":  model.PlatformFacebook,
	"fb.com":        model.PlatformFacebook,
	"twitter.com":   model.PlatformTwitter,
	"x.com":         model.PlatformTwitter,
	"linkedin.com":  model.PlatformLinkedIn,
	"instagram.com": model.PlatformInstagram,
	"youtube.com":   model.PlatformYouTube,
	"youtu.be":      model.PlatformYouTube,
}

// otherSocialHosts are social networks without a dedicated field.
var otherSocialHosts = []string{
	"pinterest.com",
	"snapchat.com",
	"tiktok.com",
	"discord.com",
	"reddit.com",
	"tumblr.com",
	"telegram.org",
}

var addressKeywords = []string{"street", "st", "avenue", "ave", "road", "rd", "boulevard", "blvd", "drive", "dr", "suite", "apt"}

// addressSelectors are tried in order; only the first element matching each is considered.
var addressSelectors = []func(n *html.Node) bool{
	func(n *html.Node) bool { return strings.Contains(attr(n, "itemtype"), "PostalAddress") },
	hasClass("address"),
	hasClass("location"),
	hasClass("contact-address"),
	classContains("address"),
	classContains("location"),
}

// Extract parses an HTML page and pulls out phone numbers, social profile
// links and a postal address.
func Extract(body []byte) (*Extracted, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}

	var hrefs []string
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			if h := attr(n, "href"); h != "" {
				hrefs = append(hrefs, h)
			}
		}
		return true
	})

	text := textContent(doc)
	phoneSource := text
	for _, h := range hrefs {
		if tel, ok := strings.CutPrefix(strings.ToLower(h), "tel:"); ok {
			phoneSource += " " + tel
		}
	}

	return &Extracted{
		PhoneNumbers: ExtractPhones(phoneSource),
		SocialLinks:  ClassifySocialLinks(hrefs),
		Address:      extractAddress(doc, text),
	}, nil
}

// ExtractPhones finds phone-number-like strings in text. A candidate is kept
// when it has at least ten digits once a leading country code 1 is dropped.
// Matches are trimmed and returned once each, in first-seen order.
func ExtractPhones(text string) []string {
	var found []string
	for _, re := range phonePatterns {
		for _, m := range re.FindAllString(text, -1) {
			digits := strings.TrimPrefix(nonDigitRe.ReplaceAllString(m, ""), "1")
			if len(digits) >= 10 {
				found = append(found, strings.TrimSpace(m))
			}
		}
	}
	return model.DedupOrdered(found)
}

// ClassifySocialLinks sorts hrefs into platform links. For named platforms the
// last link on the page wins; other social networks are collected in page order.
func ClassifySocialLinks(hrefs []string) model.SocialLinks {
	var links model.SocialLinks
	for _, h := range hrefs {
		host := linkHost(h)
		if host == "" {
			continue
		}
		if p, ok := platformHosts[host]; ok {
			links.Set(p, h)
			continue
		}
		for _, o := range otherSocialHosts {
			if host == o {
				links.Other = append(links.Other, h)
				break
			}
		}
	}
	links.Other = model.DedupOrdered(links.Other)
	return links
}

// linkHost returns the lower-cased host of an absolute or protocol-relative
// link with www., m. and mobile. prefixes removed.
func linkHost(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range []string{"www.", "m.", "mobile.", "web."} {
		host = strings.TrimPrefix(host, p)
	}
	return host
}

func extractAddress(doc *html.Node, bodyText string) string {
	for _, match := range addressSelectors {
		el := find(doc, match)
		if el == nil {
			continue
		}
		if text := textContent(el); len(text) > 10 && looksLikeAddress(text) {
			return text
		}
	}
	return strings.TrimSpace(streetAddress.FindString(bodyText))
}

func looksLikeAddress(text string) bool {
	lower := strings.ToLower(text)
	hasKeyword := false
	for _, k := range addressKeywords {
		if strings.Contains(lower, k) {
			hasKeyword = true
			break
		}
	}
	return hasKeyword && digitRe.MatchString(text)
}

// walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// find returns the first element in document order for which match is true.
func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// textContent joins the visible text under n with single spaces.
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(n *html.Node) bool {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return false
			}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
		return true
	})
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == name {
				return true
			}
		}
		return false
	}
}

func classContains(sub string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return strings.Contains(attr(n, "class"), sub)
	}
}
