// Command rednote drives a persistent browser session against the
// platform: interactive login, keyword search, favorites listing, and
// single or batch note extraction. Results go to stdout as JSON; logs
// go to stderr.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/adapters/browser"
	"github.com/CopeeeTang/rednote-mind-mcp/internal/adapters/media"
	"github.com/CopeeeTang/rednote-mind-mcp/internal/adapters/scraper"
	"github.com/CopeeeTang/rednote-mind-mcp/internal/adapters/store"
	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
	"github.com/CopeeeTang/rednote-mind-mcp/internal/usecases"
	"github.com/CopeeeTang/rednote-mind-mcp/pkg/log"
)

// LogLevelEnv selects the minimum log level (debug, info, warn, error).
const LogLevelEnv = "REDNOTE_LOG_LEVEL"

const defaultSelectorsFile = "config/selectors.yaml"

// engine bundles the wired adapters behind the use cases.
type engine struct {
	browser   *browser.Browser
	session   *browser.Session
	selectors *scraper.SelectorConfig

	checkSession *usecases.CheckSessionUseCase
	login        *usecases.LoginUseCase
	search       *usecases.SearchUseCase
	favorites    *usecases.ListFavoritesUseCase
	fetchNote    *usecases.FetchNoteUseCase
	batch        *usecases.BatchNotesUseCase
	fetchImages  *usecases.FetchImagesUseCase
}

func newEngine(selectorsFile string) (*engine, error) {
	credStore, err := store.NewCredentialStore()
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	selectors, err := scraper.LoadSelectors(selectorsFile)
	if err != nil {
		log.GlobalDebug("selector file not loaded, using built-in defaults",
			"file", selectorsFile, "error", err)
		selectors = scraper.DefaultSelectors()
	}

	b, err := browser.New()
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}

	session := browser.NewSession(b, credStore, selectors.GetProfileLinks())
	extractor := scraper.NewExtractor(b, selectors, scraper.HoverPacer())
	acquirer := media.NewAcquirer()

	return &engine{
		browser:      b,
		session:      session,
		selectors:    selectors,
		checkSession: usecases.NewCheckSessionUseCase(session),
		login:        usecases.NewLoginUseCase(session),
		search:       usecases.NewSearchUseCase(session, extractor),
		favorites:    usecases.NewListFavoritesUseCase(session, extractor),
		fetchNote:    usecases.NewFetchNoteUseCase(session, extractor, acquirer),
		batch:        usecases.NewBatchNotesUseCase(session, extractor, acquirer, scraper.BatchPacer()),
		fetchImages:  usecases.NewFetchImagesUseCase(session, extractor, acquirer),
	}, nil
}

func (e *engine) close() {
	e.selectors.Close()
	e.browser.Close()
}

// withEngine wires the adapters, runs fn, and tears the browser down
// afterwards regardless of the outcome.
func withEngine(selectorsFile string, fn func(e *engine) error) error {
	e, err := newEngine(selectorsFile)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}

// printJSON writes the result document to stdout. Logs stay on stderr
// so output remains machine-parseable.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func mediaOptions(transform bool) domain.MediaOptions {
	opts := media.DefaultOptions()
	opts.Transform = transform
	return opts
}

func main() {
	_ = godotenv.Load()

	if level, err := log.ParseLevel(os.Getenv(LogLevelEnv)); err == nil {
		log.Default().SetLevel(level)
	}

	var selectorsFile string

	root := &cobra.Command{
		Use:           "rednote",
		Short:         "Session-based note extraction for the rednote platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&selectorsFile, "selectors", defaultSelectorsFile,
		"YAML file with page selectors (falls back to built-in defaults)")

	var loginTimeout time.Duration
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Open the login page and wait for the user to authenticate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(selectorsFile, func(e *engine) error {
				result, err := e.login.Execute(cmd.Context(), loginTimeout)
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
	initCmd.Flags().DurationVar(&loginTimeout, "timeout", usecases.DefaultLoginTimeout,
		"how long to wait for the interactive login")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Probe whether the saved session is still valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(selectorsFile, func(e *engine) error {
				status, err := e.checkSession.Execute(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(status)
			})
		},
	}

	var searchLimit int
	var searchSort string
	searchCmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search notes by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(selectorsFile, func(e *engine) error {
				result, err := e.search.Execute(cmd.Context(), args[0], searchLimit, domain.SortMode(searchSort))
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results (1-50)")
	searchCmd.Flags().StringVar(&searchSort, "sort", string(domain.SortGeneral),
		"result order: general, popular or latest")

	var favLimit int
	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "List notes from the logged-in user's favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(selectorsFile, func(e *engine) error {
				refs, err := e.favorites.Execute(cmd.Context(), favLimit)
				if err != nil {
					return err
				}
				return printJSON(refs)
			})
		},
	}
	favoritesCmd.Flags().IntVar(&favLimit, "limit", 10, "maximum results (1-50)")

	var noteWithImages bool
	noteCmd := &cobra.Command{
		Use:   "note <url>",
		Short: "Fetch one note's full content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(selectorsFile, func(e *engine) error {
				note, err := e.fetchNote.Execute(cmd.Context(), args[0], noteWithImages, mediaOptions(true))
				if err != nil {
					return err
				}
				return printJSON(note)
			})
		},
	}
	noteCmd.Flags().BoolVar(&noteWithImages, "images", false, "also fetch the note's images")

	var batchLimit int
	var batchWithImages bool
	var batchURLs []string
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Fetch full content for favorites, or for --urls",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(selectorsFile, func(e *engine) error {
				var result domain.BatchResult
				var err error
				if len(batchURLs) > 0 {
					result, err = e.batch.FromURLs(cmd.Context(), batchURLs, batchWithImages, mediaOptions(true))
				} else {
					result, err = e.batch.FromFavorites(cmd.Context(), batchLimit, batchWithImages, mediaOptions(true))
				}
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
	batchCmd.Flags().IntVar(&batchLimit, "limit", 10, "maximum favorites to fetch (1-50)")
	batchCmd.Flags().BoolVar(&batchWithImages, "images", false, "also fetch each note's images")
	batchCmd.Flags().StringSliceVar(&batchURLs, "urls", nil, "explicit note URLs instead of favorites")

	var imagesOut string
	imagesCmd := &cobra.Command{
		Use:   "images <url>",
		Short: "Download a note's images untransformed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(selectorsFile, func(e *engine) error {
				images, err := e.fetchImages.Execute(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				saved, err := saveImages(imagesOut, images)
				if err != nil {
					return err
				}
				return printJSON(saved)
			})
		},
	}
	imagesCmd.Flags().StringVar(&imagesOut, "out", ".", "directory to write image files into")

	root.AddCommand(initCmd, checkCmd, searchCmd, favoritesCmd, noteCmd, batchCmd, imagesCmd)

	if err := root.Execute(); err != nil {
		log.GlobalError("command failed", "error", err)
		os.Exit(1)
	}
}

// savedImage is the per-file report of the images command.
type savedImage struct {
	Path      string `json:"path"`
	SourceURL string `json:"source_url"`
	Size      int    `json:"size"`
	MimeType  string `json:"mime_type"`
}

func saveImages(dir string, images []domain.Image) ([]savedImage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	saved := make([]savedImage, 0, len(images))
	for i, img := range images {
		path := filepath.Join(dir, fmt.Sprintf("image_%02d%s", i+1, extFor(img.MimeType)))
		if err := os.WriteFile(path, img.Bytes, 0o644); err != nil {
			return saved, fmt.Errorf("write %s: %w", path, err)
		}
		saved = append(saved, savedImage{
			Path:      path,
			SourceURL: img.SourceURL,
			Size:      img.Size,
			MimeType:  img.MimeType,
		})
	}
	return saved, nil
}

func extFor(mimeType string) string {
	switch {
	case mimeType == "image/png":
		return ".png"
	case mimeType == "image/gif":
		return ".gif"
	case mimeType == "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
