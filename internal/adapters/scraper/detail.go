package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

// parseDetail hydrates a full note from a detail-page snapshot. Engagement
// counters default to 0 when absent, never null. Media URLs are
// collected but not fetched at this layer.
func parseDetail(html, noteURL string, sel SelectorSet) (*domain.Note, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse detail snapshot: %w", err)
	}

	note := &domain.Note{URL: noteURL}

	note.NoteID = noteIDFromURL(noteURL)
	if note.NoteID == "" {
		note.NoteID = noteIDFromDocument(doc)
	}
	if note.NoteID == "" {
		return nil, domain.ErrNoteIDNotFound
	}

	note.Title = cleanText(doc.Find(sel.DetailTitle).First().Text())
	if note.Title == "" {
		note.Title = metaContent(doc, "og:title")
	}

	note.Content = descText(doc.Find(sel.DetailDesc).First())
	if note.Content == "" {
		note.Content = metaContent(doc, "og:description")
	}

	note.Author = parseDetailAuthor(doc, sel)
	note.Tags = parseTags(doc)
	note.Metrics = domain.Metrics{
		Likes:    parseCount(doc.Find(sel.DetailLikes).First().Text()),
		Collects: parseCount(doc.Find(sel.DetailCollects).First().Text()),
		Comments: parseCount(doc.Find(sel.DetailComments).First().Text()),
	}
	note.PublishTime = cleanText(doc.Find(sel.DetailDate).First().Text())
	note.MediaURLs = parseMediaURLs(doc)

	return note, nil
}

// metaContent reads the content attribute of one OpenGraph meta tag.
// The platform keeps these populated even when the rendered DOM is
// degraded, so they back the title, body and URL fallbacks.
func metaContent(doc *goquery.Document, prop string) string {
	content, _ := doc.Find("meta[property='" + prop + "']").First().Attr("content")
	return cleanText(content)
}

// noteIDFromURL extracts the ID segment from a detail URL.
func noteIDFromURL(noteURL string) string {
	if m := exploreRe.FindStringSubmatch(noteURL); m != nil {
		return m[1]
	}
	if m := profileNoteRe.FindStringSubmatch(noteURL); m != nil {
		return m[1]
	}
	return ""
}

// noteIDFromDocument falls back to the page's own links and meta URL.
func noteIDFromDocument(doc *goquery.Document) string {
	if id := noteIDFromURL(metaContent(doc, "og:url")); id != "" {
		return id
	}

	id := ""
	doc.Find("a[href*='/explore/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := exploreRe.FindStringSubmatch(href); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	return id
}

func parseDetailAuthor(doc *goquery.Document, sel SelectorSet) domain.Author {
	author := domain.Author{
		Name: cleanText(doc.Find(sel.DetailAuthor).First().Text()),
	}

	doc.Find("a[href*='/user/profile/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if profileNoteRe.MatchString(href) {
			return true
		}
		author.URL = absoluteURL(href)
		if author.Name == "" {
			author.Name = cleanText(a.Text())
		}
		return false
	})

	return author
}

// parseTags reads hashtag anchors out of the note body. The leading #
// is stripped; duplicates are dropped.
func parseTags(doc *goquery.Document) []string {
	var tags []string
	seen := map[string]bool{}

	doc.Find("a.tag, #detail-desc a[href*='search_result'], [class*='desc'] a[href*='search_result']").Each(func(_ int, a *goquery.Selection) {
		tag := strings.TrimPrefix(cleanText(a.Text()), "#")
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	})
	return tags
}

// parseMediaURLs collects carousel and cover image URLs in document
// order. Avatar thumbnails are excluded; only CDN-hosted note media
// qualifies.
func parseMediaURLs(doc *goquery.Document) []string {
	var urls []string
	seen := map[string]bool{}
	add := func(src string) {
		if src == "" || seen[src] || !strings.Contains(src, "xhscdn.com") || strings.Contains(src, "avatar") {
			return
		}
		seen[src] = true
		urls = append(urls, src)
	}

	doc.Find(".media-container img, .swiper-slide img, [class*='carousel'] img, img[src*='sns-webpic']").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		add(src)
	})
	doc.Find("meta[property='og:image']").Each(func(_ int, m *goquery.Selection) {
		content, _ := m.Attr("content")
		add(content)
	})
	return urls
}

// descText flattens the note body while keeping line structure: <br>
// becomes a newline, tags are dropped, horizontal whitespace collapses.
func descText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	html, err := sel.Html()
	if err != nil {
		return cleanText(sel.Text())
	}

	html = regexp.MustCompile(`<br\s*/?\s*>`).ReplaceAllString(html, "\n")
	html = regexp.MustCompile(`</(div|p)>`).ReplaceAllString(html, "\n")
	html = regexp.MustCompile(`<[^>]*>`).ReplaceAllString(html, "")
	html = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'", "&nbsp;", " ").Replace(html)

	lines := strings.Split(html, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = cleanText(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

var countRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(万|w|k)?`)

// parseCount converts the platform's counter text into an integer.
// Handles the 万 (10k) and k suffixes; placeholder labels like 点赞
// (the button caption shown when a count is hidden) yield 0.
func parseCount(s string) int {
	s = cleanText(s)
	if s == "" {
		return 0
	}

	m := countRe.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return 0
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "万", "w":
		n *= 10000
	case "k":
		n *= 1000
	}
	return int(n)
}
