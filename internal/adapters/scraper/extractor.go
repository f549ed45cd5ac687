// Package scraper extracts structured note data from the platform's
// pages. The platform exposes no stable API: everything here works
// against the live DOM of an automated browser session, and the
// authoritative note links only appear after user-like interaction.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/adapters/browser"
	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
	"github.com/CopeeeTang/rednote-mind-mcp/pkg/log"
)

const (
	listNavTimeout    = 30 * time.Second
	containerTimeout  = 30 * time.Second
	detailWaitTimeout = 15 * time.Second

	listSettleWait   = 3 * time.Second
	searchSettleWait = 5 * time.Second
	scrollWait       = 2 * time.Second
	sortSwitchWait   = 3 * time.Second
	detailSettleWait = 2 * time.Second
)

// Extractor navigates to a page class, performs the minimum interaction
// sequence required to materialize hidden data, and parses a structured
// result out of a DOM snapshot.
type Extractor struct {
	browser   *browser.Browser
	selectors *SelectorConfig
	pacer     *Pacer
}

// NewExtractor creates an extractor. The pacer is shared by every list
// page's hover pass.
func NewExtractor(b *browser.Browser, selectors *SelectorConfig, pacer *Pacer) *Extractor {
	return &Extractor{browser: b, selectors: selectors, pacer: pacer}
}

// Favorites fetches up to limit refs from a user's favorites tab.
// userID may be the lazy sentinel when no identity was resolved; the
// platform sometimes redirects it, sometimes rejects it.
func (e *Extractor) Favorites(ctx context.Context, userID string, limit int) ([]domain.NoteRef, error) {
	pageURL := fmt.Sprintf("%s/user/profile/%s?tab=fav&subTab=note", baseURL, userID)
	sel := e.selectors.Snapshot()
	container := sel.FavoritesContainer

	var refs []domain.NoteRef
	err := e.browser.WithTab(func(tabCtx context.Context) error {
		tabCtx = joinContext(tabCtx, ctx)

		if err := e.navigate(tabCtx, pageURL); err != nil {
			return err
		}

		if err := e.waitContainer(tabCtx, container, containerTimeout); err != nil {
			return fmt.Errorf("%w: favorites list (%s)", domain.ErrPageUnavailable, container)
		}

		if err := e.settleAndScroll(tabCtx, listSettleWait, 500); err != nil {
			return err
		}

		count, err := e.countItems(tabCtx, container)
		if err != nil {
			return err
		}
		log.GlobalDebug("favorites: items rendered", "count", count)

		if err := e.hoverPass(tabCtx, container, min(count, limit)); err != nil {
			return err
		}

		html, err := e.snapshot(tabCtx)
		if err != nil {
			return err
		}

		refs, err = parseList(html, container, limit, sel)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.GlobalInfo("favorites extracted", "requested", limit, "usable", len(refs))
	return refs, nil
}

// Search fetches up to limit refs for a keyword. Sort switching clicks
// the platform's own sort buttons; if that fails the default order is
// used rather than failing the search.
func (e *Extractor) Search(ctx context.Context, keyword string, limit int, sort domain.SortMode) ([]domain.NoteRef, error) {
	pageURL := fmt.Sprintf("%s/search_result?keyword=%s&source=web_search_result_notes",
		baseURL, url.QueryEscape(keyword))
	sel := e.selectors.Snapshot()

	var refs []domain.NoteRef
	err := e.browser.WithTab(func(tabCtx context.Context) error {
		tabCtx = joinContext(tabCtx, ctx)

		if err := e.navigate(tabCtx, pageURL); err != nil {
			return err
		}
		if err := chromedp.Run(tabCtx, chromedp.Sleep(searchSettleWait)); err != nil {
			return err
		}

		if sort != domain.SortGeneral && sort != "" {
			e.switchSort(tabCtx, sort)
		}

		if limit > 20 {
			if err := e.settleAndScroll(tabCtx, 0, 1000); err != nil {
				return err
			}
		}

		container, count, err := e.firstRenderedContainer(tabCtx, sel.SearchContainers)
		if err != nil {
			return err
		}
		log.GlobalDebug("search: items rendered", "container", container, "count", count)

		if err := e.hoverPass(tabCtx, container, min(count, limit)); err != nil {
			return err
		}

		html, err := e.snapshot(tabCtx)
		if err != nil {
			return err
		}

		refs, err = parseList(html, container, limit, sel)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.GlobalInfo("search extracted", "keyword", keyword, "usable", len(refs))
	return refs, nil
}

// Detail fetches and hydrates one note. A ref without an access token
// is still attempted; the platform may serve a degraded page, and a
// degraded record beats no record.
func (e *Extractor) Detail(ctx context.Context, noteURL string) (*domain.Note, error) {
	if _, err := url.ParseRequestURI(noteURL); err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidNoteURL, noteURL)
	}

	sel := e.selectors.Snapshot()

	var note *domain.Note
	err := e.browser.WithTab(func(tabCtx context.Context) error {
		tabCtx = joinContext(tabCtx, ctx)

		if err := e.navigate(tabCtx, noteURL); err != nil {
			return err
		}

		if err := e.waitContainer(tabCtx, sel.DetailContainer, detailWaitTimeout); err != nil {
			return fmt.Errorf("%w: note detail", domain.ErrPageUnavailable)
		}

		if err := chromedp.Run(tabCtx, chromedp.Sleep(detailSettleWait)); err != nil {
			return err
		}

		html, err := e.snapshot(tabCtx)
		if err != nil {
			return err
		}

		note, err = parseDetail(html, noteURL, sel)
		return err
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (e *Extractor) navigate(tabCtx context.Context, pageURL string) error {
	navCtx, cancel := context.WithTimeout(tabCtx, listNavTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(pageURL)); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrNavigationFailed, pageURL, err)
	}
	return nil
}

// waitContainer waits for the expected container to render. Its absence
// after the bounded wait means the extraction mechanism is broken for
// this page, which is distinct from a rendered-but-empty list.
func (e *Extractor) waitContainer(tabCtx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()
	return chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (e *Extractor) settleAndScroll(tabCtx context.Context, settle time.Duration, scrollPx int) error {
	actions := []chromedp.Action{}
	if settle > 0 {
		actions = append(actions, chromedp.Sleep(settle))
	}
	actions = append(actions,
		chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", scrollPx), nil),
		chromedp.Sleep(scrollWait),
	)
	return chromedp.Run(tabCtx, actions...)
}

func (e *Extractor) countItems(tabCtx context.Context, selector string) (int, error) {
	var count int
	err := chromedp.Run(tabCtx, chromedp.Evaluate(
		fmt.Sprintf("document.querySelectorAll(%q).length", selector), &count))
	return count, err
}

// firstRenderedContainer tries the ordered search container selectors
// and returns the first with at least one match. None matching means
// the results page never rendered.
func (e *Extractor) firstRenderedContainer(tabCtx context.Context, containers []string) (string, int, error) {
	for _, selector := range containers {
		count, err := e.countItems(tabCtx, selector)
		if err != nil {
			return "", 0, err
		}
		if count > 0 {
			return selector, count, nil
		}
	}
	return "", 0, fmt.Errorf("%w: search results", domain.ErrPageUnavailable)
}

// hoverPass hovers each of the first n list items through the pacer.
// Without this the platform never attaches the token-bearing links the
// first extraction strategy depends on.
func (e *Extractor) hoverPass(tabCtx context.Context, selector string, n int) error {
	if n <= 0 {
		return nil
	}

	hovered, err := e.pacer.Each(tabCtx, n, func(i int) error {
		return e.hoverItem(tabCtx, selector, i)
	})
	if err != nil {
		return err
	}

	log.GlobalDebug("hover pass complete", "hovered", hovered, "of", n)
	return nil
}

// hoverItem scrolls the i-th item into view and dispatches the mouse
// events the platform's lazy-link listeners react to.
func (e *Extractor) hoverItem(tabCtx context.Context, selector string, i int) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelectorAll(%q)[%d];
		if (!el) return false;
		el.scrollIntoView({ block: 'center' });
		for (const type of ['mouseover', 'mouseenter', 'mousemove']) {
			el.dispatchEvent(new MouseEvent(type, { bubbles: true, cancelable: true, view: window }));
		}
		return true;
	})()`, selector, i)

	var ok bool
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("list item %d not present", i)
	}
	return nil
}

// switchSort clicks the sort button matching the requested mode.
// Failure degrades to the default order.
func (e *Extractor) switchSort(tabCtx context.Context, sort domain.SortMode) {
	labels := map[domain.SortMode]string{
		domain.SortPopular: "最热",
		domain.SortLatest:  "最新",
	}
	label, ok := labels[sort]
	if !ok {
		return
	}

	script := fmt.Sprintf(`(() => {
		const buttons = Array.from(document.querySelectorAll("button, div[role='button']"));
		const target = buttons.find(b => (b.textContent || '').includes(%q));
		if (!target) return false;
		target.click();
		return true;
	})()`, label)

	var clicked bool
	err := chromedp.Run(tabCtx,
		chromedp.Evaluate(script, &clicked),
		chromedp.Sleep(sortSwitchWait),
	)
	if err != nil || !clicked {
		log.GlobalWarn("search: sort switch failed, using default order", "sort", sort)
	}
}

// snapshot captures the full rendered document for out-of-browser
// parsing.
func (e *Extractor) snapshot(tabCtx context.Context) (string, error) {
	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("snapshot page: %w", err)
	}
	return html, nil
}

// joinContext returns the tab context, cancelled when the caller's
// context is. chromedp contexts do not inherit from the request
// context, so the caller's cancellation has to be bridged in.
func joinContext(tabCtx, callerCtx context.Context) context.Context {
	if callerCtx == nil || callerCtx == context.Background() {
		return tabCtx
	}

	joined, cancel := context.WithCancel(tabCtx)
	go func() {
		select {
		case <-callerCtx.Done():
			cancel()
		case <-joined.Done():
		}
	}()
	return joined
}
