package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tootarchive/pkg/archiver"
	"tootarchive/pkg/auth"
	"tootarchive/pkg/config"
	"tootarchive/pkg/logger"
	"tootarchive/pkg/mastodon"
	"tootarchive/pkg/ratelimit"
	"tootarchive/pkg/store"
	"tootarchive/pkg/walker"
)

var (
	// Fetch command flags
	direction string
	noWait    bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <timeline>",
	Short: "Fetch and archive one page of a timeline",
	Long: `Fetch exactly one page of a Mastodon timeline and archive its statuses.

The timeline is one of:
  home          your home timeline (requires an account on the instance)
  public        the instance's public timeline
  tag:<name>    the hashtag timeline for <name>

The walk direction decides what "one page" means:
  next          the page after the last one fetched (ever older statuses)
  prev          the page before the first one fetched (statuses posted since)

Pagination state is kept in the archive itself, so repeated invocations
from cron walk the timeline page by page. Once walking next has reached
the oldest page, later next fetches become no-ops.

On the first run against an instance, tootarchive registers itself as an
application and asks for your account credentials to obtain an access
token. Both are stored in the archive and reused ever after.`,
	Example: `  # Archive the home timeline, oldest pages first
  tootarchive fetch home

  # Pick up statuses posted since the last run
  tootarchive fetch home --dir prev

  # Archive a hashtag timeline without the rate-limit pause
  tootarchive fetch tag:golang --no-wait

  # Archive the public timeline of a specific instance
  tootarchive fetch public --server https://example.social`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&direction, "dir", "d", "next", "walk direction (next or prev)")
	fetchCmd.Flags().BoolVar(&noWait, "no-wait", false, "skip the pre-fetch rate-limit pause")
}

func runFetch(cmd *cobra.Command, args []string) error {
	timeline := strings.TrimSpace(args[0])

	dir := walker.Direction(direction)
	if dir != walker.DirectionNext && dir != walker.DirectionPrev {
		return fmt.Errorf("invalid direction %q: must be next or prev", direction)
	}

	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("tootarchive starting")

	root, err := cfg.ArchiveRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve archive root: %w", err)
	}

	st, err := store.Open(root, cfg.Host(), log)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	credentials, err := auth.Default(cfg.Host())
	if err != nil {
		return fmt.Errorf("failed to set up credential providers: %w", err)
	}

	client := mastodon.New(cfg.Server.BaseURL, cfg.Server.UserAgent, cfg.Server.Timeout, st, credentials, log)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Wait && !noWait {
		limiter = ratelimit.NewHeaderLimiter(st, log)
	}

	w := walker.New(st, client, archiver.New(st, log), limiter, log)

	switch {
	case timeline == "home":
		err = w.FetchHome(dir)
	case timeline == "public":
		err = w.FetchPublic(dir)
	case strings.HasPrefix(timeline, "tag:"):
		tag := strings.TrimPrefix(timeline, "tag:")
		if tag == "" {
			return fmt.Errorf("empty tag name")
		}
		err = w.FetchTag(tag, dir)
	default:
		return fmt.Errorf("unknown timeline %q: must be home, public, or tag:<name>", timeline)
	}

	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"timeline":  timeline,
			"direction": string(dir),
		}).Error("fetch failed")
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		os.Exit(1)
	}

	log.WithField("timeline", timeline).Info("fetch completed")
	return nil
}
