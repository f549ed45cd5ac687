package browser

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/adapters/store"
	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
	"github.com/CopeeeTang/rednote-mind-mcp/pkg/log"
)

const (
	homeURL = "https://www.xiaohongshu.com"

	navTimeout    = 15 * time.Second
	settleWait    = 3 * time.Second
	pollInterval  = 3 * time.Second
	clickTimeout  = 5 * time.Second
	postClickWait = 2 * time.Second
)

var profilePathRe = regexp.MustCompile(`/user/profile/([A-Za-z0-9_-]+)`)

// Session decides whether the current browser context is authenticated
// and drives the interactive login flow. It owns cookie persistence:
// no other component reads or writes the credential files.
type Session struct {
	browser      *Browser
	store        *store.CredentialStore
	profileLinks []string

	injected bool
}

// NewSession creates a session controller. profileLinks is the ordered
// list of selectors tried when locating the profile affordance after a
// fresh login.
func NewSession(b *Browser, s *store.CredentialStore, profileLinks []string) *Session {
	return &Session{browser: b, store: s, profileLinks: profileLinks}
}

// HasCredentials reports whether a persisted cookie set exists. It says
// nothing about validity; the platform gives no expiry.
func (s *Session) HasCredentials() bool {
	return s.store.HasCookies()
}

// Identity returns the persisted account identifier, or "" when
// unresolved.
func (s *Session) Identity() string {
	return s.store.LoadIdentity()
}

// restoreCookies injects the persisted cookie set into the browser
// context. Runs once per process; later tabs share the profile.
func (s *Session) restoreCookies(tabCtx context.Context) {
	if s.injected {
		return
	}
	s.injected = true

	cookies := s.store.LoadCookies()
	if len(cookies) == 0 {
		return
	}

	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := make([]*network.CookieParam, 0, len(cookies))
		for _, c := range cookies {
			p := &network.CookieParam{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
			}
			if c.Expires > 0 {
				t := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				p.Expires = &t
			}
			switch c.SameSite {
			case "Strict":
				p.SameSite = network.CookieSameSiteStrict
			case "Lax":
				p.SameSite = network.CookieSameSiteLax
			case "None":
				p.SameSite = network.CookieSameSiteNone
			}
			params = append(params, p)
		}
		return network.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		log.GlobalWarn("session cookie restore failed", "error", err)
		return
	}
	log.GlobalInfo("session cookies restored", "count", len(cookies))
}

// authSignals is the snapshot the login probe evaluates. No single
// signal is authoritative; the platform has no "am I logged in" call.
type authSignals struct {
	HasCookies     bool `json:"hasCookies"`
	HasUserAvatar  bool `json:"hasUserAvatar"`
	HasLoginButton bool `json:"hasLoginButton"`
}

// authenticated is the pure decision over one signal snapshot: a weak
// positive (session cookie fragments or an avatar-like element)
// conjoined with the absence of a visible login affordance. Never
// cached beyond one page load.
func authenticated(s authSignals) bool {
	return (s.HasCookies || s.HasUserAvatar) && !s.HasLoginButton
}

const probeScript = `(() => {
	const cookies = document.cookie;
	const hasCookies = ['web_session', 'xsecappid', 'a1=', 'webId='].some(f => cookies.includes(f));
	const hasUserAvatar = document.querySelectorAll("[class*='avatar']").length > 0;
	const hasLoginButton = Array.from(document.querySelectorAll('button, a')).some(el => {
		const t = (el.textContent || '').trim().toLowerCase();
		return t.includes('登录') || t.includes('login');
	});
	return { hasCookies, hasUserAvatar, hasLoginButton };
})()`

// probe evaluates the signal snapshot on the current page.
func (s *Session) probe(tabCtx context.Context) (authSignals, error) {
	var signals authSignals
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(probeScript, &signals)); err != nil {
		return authSignals{}, fmt.Errorf("evaluate login probe: %w", err)
	}
	return signals, nil
}

// gotoHome navigates the tab to the platform home page and lets the
// client-side render settle.
func (s *Session) gotoHome(tabCtx context.Context) error {
	navCtx, cancel := context.WithTimeout(tabCtx, navTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(homeURL)); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrNavigationFailed, homeURL, err)
	}
	return chromedp.Run(tabCtx, chromedp.Sleep(settleWait))
}

// Check probes the current login state. Safe to call with no prior
// session; an unreachable or unauthenticated state is a reported
// status, not a failure.
func (s *Session) Check(ctx context.Context) (domain.LoginStatus, error) {
	var status domain.LoginStatus

	err := s.browser.WithTab(func(tabCtx context.Context) error {
		s.restoreCookies(tabCtx)

		if err := s.gotoHome(tabCtx); err != nil {
			status = domain.LoginStatus{LoggedIn: false, Message: fmt.Sprintf("login check failed: %v", err)}
			return nil
		}

		signals, err := s.probe(tabCtx)
		if err != nil {
			status = domain.LoginStatus{LoggedIn: false, Message: fmt.Sprintf("login check failed: %v", err)}
			return nil
		}

		if authenticated(signals) {
			status = domain.LoginStatus{LoggedIn: true, Message: "logged in, saved session is valid"}
		} else {
			status = domain.LoginStatus{LoggedIn: false, Message: "not logged in, run the login flow"}
		}
		return nil
	})
	return status, err
}

// Login drives the interactive login flow: open the home page, and if
// not already authenticated, poll until the user completes the login in
// the browser window or the timeout elapses. A timeout is a reported
// outcome, not an error. On a fresh login the cookie set is persisted
// and identity resolution is attempted; both degrade to warnings.
func (s *Session) Login(ctx context.Context, timeout time.Duration) (domain.LoginResult, error) {
	var result domain.LoginResult

	err := s.browser.WithTab(func(tabCtx context.Context) error {
		s.restoreCookies(tabCtx)

		if err := s.gotoHome(tabCtx); err != nil {
			return err
		}

		signals, err := s.probe(tabCtx)
		if err != nil {
			return err
		}

		if authenticated(signals) {
			// Pre-existing valid session: no interactive wait, no
			// identity re-resolution.
			log.GlobalInfo("login: already authenticated")
			result = domain.LoginResult{
				Authenticated:    true,
				IdentityResolved: s.store.LoadIdentity() != "",
			}
			return nil
		}

		log.GlobalInfo("login: waiting for user to complete login in browser window",
			"timeout", timeout)

		ok, err := waitForLogin(tabCtx, func(c context.Context) (bool, error) {
			sig, perr := s.probe(c)
			if perr != nil {
				return false, perr
			}
			return authenticated(sig), nil
		}, pollInterval, timeout)
		if err != nil {
			return err
		}
		if !ok {
			log.GlobalWarn("login: timed out", "timeout", timeout)
			result = domain.LoginResult{TimedOut: true}
			return nil
		}

		result = domain.LoginResult{Authenticated: true}

		if warn := s.persistCookies(tabCtx); warn != "" {
			result.Warnings = append(result.Warnings, warn)
		}

		id, warnings := s.resolveIdentity(tabCtx)
		result.Warnings = append(result.Warnings, warnings...)
		result.IdentityResolved = id != ""
		return nil
	})
	return result, err
}

// waitForLogin polls probe every interval until it reports true or the
// timeout elapses. Returns (false, nil) on timeout; probe errors abort
// the wait.
func waitForLogin(ctx context.Context, probe func(context.Context) (bool, error), interval, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := sleepCtx(ctx, interval); err != nil {
			return false, err
		}

		ok, err := probe(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		log.GlobalDebug("login: still waiting",
			"remaining", time.Until(deadline).Round(time.Second))
	}
	return false, nil
}

// persistCookies saves the live cookie set. Best-effort: a failed save
// only means the user logs in again next run, so the error is reduced
// to a warning instead of failing a login that already succeeded.
func (s *Session) persistCookies(tabCtx context.Context) string {
	var cookies []store.Cookie

	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		live, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range live {
			cookies = append(cookies, store.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
				SameSite: c.SameSite.String(),
			})
		}
		return nil
	}))
	if err != nil {
		log.GlobalWarn("login: reading cookies failed", "error", err)
		return fmt.Sprintf("session not persisted: %v", err)
	}
	if len(cookies) == 0 {
		return "session not persisted: browser returned no cookies"
	}

	if err := s.store.SaveCookies(cookies); err != nil {
		log.GlobalWarn("login: saving cookies failed", "error", err)
		return fmt.Sprintf("session not persisted: %v", err)
	}

	log.GlobalInfo("login: session saved", "cookies", len(cookies))
	return ""
}

// resolveIdentity locates the profile affordance via the ordered
// selector fallbacks, clicks it, and parses the account identifier out
// of the resulting path. Every failure degrades to a warning: the login
// itself stays successful, but operations needing a profile-scoped URL
// may be impaired.
func (s *Session) resolveIdentity(tabCtx context.Context) (string, []string) {
	var warnings []string

	for _, sel := range s.profileLinks {
		clickCtx, cancel := context.WithTimeout(tabCtx, clickTimeout)
		err := chromedp.Run(clickCtx,
			chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible),
		)
		cancel()
		if err != nil {
			continue
		}

		if err := chromedp.Run(tabCtx, chromedp.Sleep(postClickWait)); err != nil {
			break
		}

		var location string
		if err := chromedp.Run(tabCtx, chromedp.Location(&location)); err != nil {
			warnings = append(warnings, fmt.Sprintf("identity: reading location failed: %v", err))
			break
		}

		m := profilePathRe.FindStringSubmatch(location)
		if m == nil || !domain.ValidIdentity(m[1]) {
			continue
		}

		id := m[1]
		if err := s.store.SaveIdentity(id); err != nil {
			log.GlobalWarn("identity: persist failed", "error", err)
			warnings = append(warnings, fmt.Sprintf("identity resolved but not persisted: %v", err))
		} else {
			log.GlobalInfo("identity resolved", "identifier", id)
		}
		return id, warnings
	}

	warnings = append(warnings,
		"identity not resolved: profile page unreachable; favorites and other profile-scoped operations may be impaired")
	return "", warnings
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
