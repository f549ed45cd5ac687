package scraper

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// SelectorSet holds the CSS selectors used against the platform's
// pages. Parse passes receive a value copy taken under the config's
// read lock, so a concurrent reload can never rewrite selectors while
// a snapshot is being parsed.
type SelectorSet struct {
	FavoritesContainer string
	SearchContainers   []string
	ItemTitle          string
	ItemTime           string

	DetailContainer string
	DetailTitle     string
	DetailDesc      string
	DetailAuthor    string
	DetailDate      string
	DetailLikes     string
	DetailCollects  string
	DetailComments  string

	ProfileLinks []string
}

// SelectorConfig is the mutable holder of the selector set. The
// platform ships obfuscated, frequently-rotated class names, so the
// selectors live in a YAML file that can be edited and hot-reloaded
// without a rebuild.
type SelectorConfig struct {
	SelectorSet

	mu          sync.RWMutex
	lastModTime time.Time
	filePath    string
	done        chan struct{}
	closeOnce   sync.Once
}

// rawConfig represents the YAML structure.
type rawConfig struct {
	Favorites struct {
		Container string `yaml:"container"`
		Title     string `yaml:"title"`
		Time      string `yaml:"time"`
	} `yaml:"favorites"`
	Search struct {
		Containers []string `yaml:"containers"`
	} `yaml:"search"`
	Detail struct {
		Container string `yaml:"container"`
		Title     string `yaml:"title"`
		Desc      string `yaml:"desc"`
		Author    string `yaml:"author"`
		Date      string `yaml:"date"`
		Likes     string `yaml:"likes"`
		Collects  string `yaml:"collects"`
		Comments  string `yaml:"comments"`
	} `yaml:"detail"`
	Login struct {
		ProfileLinks []string `yaml:"profile_links"`
	} `yaml:"login"`
}

// defaultSelectorSet is the selector set observed on the platform's
// current web client.
func defaultSelectorSet() SelectorSet {
	return SelectorSet{
		FavoritesContainer: "section.note-item",
		SearchContainers: []string{
			"section.note-item",
			"[class*='note-item']",
			"[class*='search-item']",
			"[class*='feed-item']",
			"a[href*='/explore/']",
		},
		ItemTitle: "[class*='title']",
		ItemTime:  "[class*='time']",

		DetailContainer: "#noteContainer, .note-container, [class*='note-detail']",
		DetailTitle:     "#detail-title, [class*='title']",
		DetailDesc:      "#detail-desc, [class*='desc']",
		DetailAuthor:    ".author-wrapper .username, [class*='author'] [class*='name']",
		DetailDate:      ".bottom-container .date, [class*='date']",
		DetailLikes:     ".like-wrapper .count",
		DetailCollects:  ".collect-wrapper .count",
		DetailComments:  ".chat-wrapper .count",

		ProfileLinks: []string{
			"a[href^='/user/profile/']",
			".user .link-wrapper",
			"[class*='user'] a[href*='profile']",
			"[class*='avatar']",
		},
	}
}

// DefaultSelectors returns a config carrying the built-in selector set.
// Used when no YAML file is supplied; has no watcher to close.
func DefaultSelectors() *SelectorConfig {
	return &SelectorConfig{SelectorSet: defaultSelectorSet()}
}

// LoadSelectors loads selector configuration from a YAML file and
// starts a background goroutine for hot-reloading. Callers stop the
// watcher with Close.
func LoadSelectors(filePath string) (*SelectorConfig, error) {
	config := &SelectorConfig{filePath: filePath, done: make(chan struct{})}
	if err := config.reload(); err != nil {
		return nil, err
	}

	go config.watch()

	return config, nil
}

// reload reads the configuration from the file. Fields absent from the
// YAML keep the defaults.
func (c *SelectorConfig) reload() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	def := defaultSelectorSet()
	pick := func(v, fallback string) string {
		if v != "" {
			return v
		}
		return fallback
	}

	set := SelectorSet{
		FavoritesContainer: pick(raw.Favorites.Container, def.FavoritesContainer),
		ItemTitle:          pick(raw.Favorites.Title, def.ItemTitle),
		ItemTime:           pick(raw.Favorites.Time, def.ItemTime),
		SearchContainers:   raw.Search.Containers,
		DetailContainer:    pick(raw.Detail.Container, def.DetailContainer),
		DetailTitle:        pick(raw.Detail.Title, def.DetailTitle),
		DetailDesc:         pick(raw.Detail.Desc, def.DetailDesc),
		DetailAuthor:       pick(raw.Detail.Author, def.DetailAuthor),
		DetailDate:         pick(raw.Detail.Date, def.DetailDate),
		DetailLikes:        pick(raw.Detail.Likes, def.DetailLikes),
		DetailCollects:     pick(raw.Detail.Collects, def.DetailCollects),
		DetailComments:     pick(raw.Detail.Comments, def.DetailComments),
		ProfileLinks:       raw.Login.ProfileLinks,
	}
	if len(set.SearchContainers) == 0 {
		set.SearchContainers = def.SearchContainers
	}
	if len(set.ProfileLinks) == 0 {
		set.ProfileLinks = def.ProfileLinks
	}

	c.mu.Lock()
	c.SelectorSet = set
	c.mu.Unlock()

	return nil
}

// watch monitors the configuration file for changes and reloads it
// until Close is called.
func (c *SelectorConfig) watch() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		info, err := os.Stat(c.filePath)
		if err != nil {
			continue
		}

		c.mu.RLock()
		stale := info.ModTime().After(c.lastModTime)
		c.mu.RUnlock()
		if !stale {
			continue
		}

		if err := c.reload(); err != nil {
			continue
		}
		c.mu.Lock()
		c.lastModTime = info.ModTime()
		c.mu.Unlock()
	}
}

// Close stops the hot-reload watcher. Safe to call more than once, and
// on a config that never started one.
func (c *SelectorConfig) Close() {
	c.closeOnce.Do(func() {
		if c.done != nil {
			close(c.done)
		}
	})
}

// Snapshot returns an immutable copy of the current selector set.
func (c *SelectorConfig) Snapshot() SelectorSet {
	c.mu.RLock()
	defer c.mu.RUnlock()

	set := c.SelectorSet
	set.SearchContainers = append([]string(nil), c.SearchContainers...)
	set.ProfileLinks = append([]string(nil), c.ProfileLinks...)
	return set
}

// GetFavoritesContainer returns the favorites item selector (thread-safe).
func (c *SelectorConfig) GetFavoritesContainer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.FavoritesContainer
}

// GetSearchContainers returns the ordered search container selectors
// (thread-safe).
func (c *SelectorConfig) GetSearchContainers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.SearchContainers))
	copy(out, c.SearchContainers)
	return out
}

// GetDetailContainer returns the detail page container selector
// (thread-safe).
func (c *SelectorConfig) GetDetailContainer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DetailContainer
}

// GetProfileLinks returns the ordered profile affordance selectors
// (thread-safe).
func (c *SelectorConfig) GetProfileLinks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.ProfileLinks))
	copy(out, c.ProfileLinks)
	return out
}
