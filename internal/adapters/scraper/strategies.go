package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

const baseURL = "https://www.xiaohongshu.com"

// The platform renders the authoritative note link only after a
// user-like interaction, and different page classes bury it under
// different DOM shapes. ID recovery therefore runs an ordered list of
// independent strategies; each candidate is validated in full before
// the next strategy is tried, and the first valid one wins. Later
// strategies are strictly less reliable, so the order is load-bearing
// and partial results from two strategies are never merged.

// candidate is one strategy's proposed identification of a list item.
type candidate struct {
	noteID     string
	url        string
	xsecToken  string
	xsecSource string
	source     string
}

func (c candidate) valid() bool {
	return c.noteID != "" && c.url != ""
}

// strategy inspects one list-item subtree and proposes a candidate.
type strategy func(item *goquery.Selection) (candidate, bool)

// listStrategies in reliability order. Only the first yields an access
// token; the rest recover a bare ID that may be rejected downstream.
var listStrategies = []strategy{
	fromTokenLink,
	fromExploreLink,
	fromCoverURL,
	fromDataAttr,
}

var (
	profileNoteRe = regexp.MustCompile(`/profile/[^/]+/([a-zA-Z0-9]{20,})`)
	exploreRe     = regexp.MustCompile(`/explore/([a-zA-Z0-9]{20,})`)
	xsecTokenRe   = regexp.MustCompile(`xsec_token=([^&]+)`)
	xsecSourceRe  = regexp.MustCompile(`xsec_source=([^&]+)`)
	coverIDRe     = regexp.MustCompile(`[a-zA-Z0-9]{24}`)
)

// fromTokenLink parses hover-revealed profile anchors that carry both
// the note ID and the short-lived xsec_token. This is the only strategy
// that yields a usable access token, so it runs first.
func fromTokenLink(item *goquery.Selection) (candidate, bool) {
	var c candidate
	item.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if href == "" || !strings.Contains(href, "xsec_token=") || !strings.Contains(href, "/profile/") {
			return true
		}

		m := profileNoteRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}

		c.noteID = m[1]
		if tm := xsecTokenRe.FindStringSubmatch(href); tm != nil {
			if tok, err := url.QueryUnescape(tm[1]); err == nil {
				c.xsecToken = tok
			} else {
				c.xsecToken = tm[1]
			}
		}
		if sm := xsecSourceRe.FindStringSubmatch(href); sm != nil {
			c.xsecSource = sm[1]
		}
		c.url = exploreURL(c.noteID, c.xsecToken, c.xsecSource)
		c.source = "profile-with-token"
		return false
	})
	return c, c.valid() && c.xsecToken != ""
}

// fromExploreLink parses plain detail anchors carrying only the ID.
// The resulting URL has no token; downstream fetches may be rejected
// and callers must tolerate that.
func fromExploreLink(item *goquery.Selection) (candidate, bool) {
	var c candidate
	item.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		m := exploreRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}

		c.noteID = m[1]
		if strings.HasPrefix(href, "http") {
			c.url = href
		} else {
			c.url = baseURL + href
		}
		c.source = "explore"
		return false
	})
	return c, c.valid()
}

// fromCoverURL pulls a 24-character alphanumeric run out of the cover
// image URL. Last-resort: CDN paths usually embed the note ID but
// nothing guarantees the first such run is it.
func fromCoverURL(item *goquery.Selection) (candidate, bool) {
	src, ok := item.Find("img").First().Attr("src")
	if !ok || src == "" {
		return candidate{}, false
	}

	id := coverIDRe.FindString(src)
	if id == "" {
		return candidate{}, false
	}

	return candidate{
		noteID: id,
		url:    exploreURL(id, "", ""),
		source: "cover-img-url",
	}, true
}

// fromDataAttr reads explicit data attributes on the container element.
func fromDataAttr(item *goquery.Selection) (candidate, bool) {
	for _, attr := range []string{"data-note-id", "data-id", "data-trace-id"} {
		if v, ok := item.Attr(attr); ok && len(v) >= 20 {
			return candidate{
				noteID: v,
				url:    exploreURL(v, "", ""),
				source: "data-attr",
			}, true
		}
	}
	return candidate{}, false
}

// exploreURL builds the canonical detail URL, attaching the access
// token when one was recovered.
func exploreURL(noteID, token, source string) string {
	if token == "" {
		return fmt.Sprintf("%s/explore/%s", baseURL, noteID)
	}
	return fmt.Sprintf("%s/explore/%s?xsec_token=%s&xsec_source=%s", baseURL, noteID, url.QueryEscape(token), source)
}

// resolveRef runs the strategies in order against one list item and
// fills in the descriptive fields. Returns false when no strategy
// produced a valid candidate; such items are dropped, never partially
// used.
func resolveRef(item *goquery.Selection, sel SelectorSet) (domain.NoteRef, bool) {
	var c candidate
	found := false
	for _, s := range listStrategies {
		if got, ok := s(item); ok {
			c = got
			found = true
			break
		}
	}
	if !found {
		return domain.NoteRef{}, false
	}

	ref := domain.NoteRef{
		NoteID:     c.noteID,
		URL:        c.url,
		XsecToken:  c.xsecToken,
		XsecSource: c.xsecSource,
	}

	ref.Title = cleanText(item.Find(sel.ItemTitle).First().Text())
	if cover, ok := item.Find("img").First().Attr("src"); ok {
		ref.CoverURL = cover
	}
	if authorLink := item.Find("a[href*='/user/profile/']").First(); authorLink.Length() > 0 {
		href, _ := authorLink.Attr("href")
		// Note links on profile pages also match; only anchors whose
		// path ends at the user segment name an author.
		if !profileNoteRe.MatchString(href) {
			ref.Author = domain.Author{
				Name: cleanText(authorLink.Text()),
				URL:  absoluteURL(href),
			}
		}
	}
	if ref.Author.Name == "" {
		if nameEl := item.Find("[class*='author'], [class*='user'] [class*='name']").First(); nameEl.Length() > 0 {
			ref.Author.Name = cleanText(nameEl.Text())
		}
	}

	return ref, ref.Usable()
}

// parseList extracts refs from a snapshot of a list page. The caller
// has already verified the container rendered, so zero refs here is a
// legitimate empty result.
func parseList(html, containerSel string, limit int, sel SelectorSet) ([]domain.NoteRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page snapshot: %w", err)
	}

	refs := make([]domain.NoteRef, 0, limit)
	doc.Find(containerSel).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if ref, ok := resolveRef(item, sel); ok {
			refs = append(refs, ref)
		}
		return len(refs) < limit
	})
	return refs, nil
}

func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

var spaceRe = regexp.MustCompile(`\s+`)

// cleanText collapses whitespace and trims.
func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
