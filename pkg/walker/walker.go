package walker

import (
	"encoding/json"
	"fmt"
	"net/http"

	"tootarchive/pkg/archiver"
	"tootarchive/pkg/logger"
	"tootarchive/pkg/mastodon"
	"tootarchive/pkg/ratelimit"
	"tootarchive/pkg/store"
)

// Direction selects which way a walk moves through a timeline
type Direction string

const (
	// DirectionPrev walks toward newer entries
	DirectionPrev Direction = "prev"
	// DirectionNext walks toward older entries
	DirectionNext Direction = "next"
)

// lastGetKey records the URL a cursor's page was actually fetched from
const lastGetKey = "last_get"

// Client is the API surface the walker needs. *mastodon.Client satisfies it.
type Client interface {
	// GetJSON performs an authenticated GET and returns the response headers
	GetJSON(url string, target interface{}) (http.Header, error)
	// BaseURL returns the instance base URL
	BaseURL() string
}

// Walker fetches one timeline page per invocation, persisting a cursor so
// repeated invocations (typically from cron) walk the timeline
// incrementally. It never loops internally.
type Walker struct {
	store    *store.Store
	client   Client
	archiver *archiver.Archiver
	limiter  ratelimit.Limiter
	logger   logger.Logger
}

// New creates a Walker. limiter may be nil to disable the pre-fetch wait.
func New(st *store.Store, client Client, arch *archiver.Archiver, limiter ratelimit.Limiter, log logger.Logger) *Walker {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Walker{
		store:    st,
		client:   client,
		archiver: arch,
		limiter:  limiter,
		logger:   log,
	}
}

// FetchHome fetches one page of the home timeline
func (w *Walker) FetchHome(dir Direction) error {
	return w.FetchPage(mastodon.TimelineHome, dir)
}

// FetchPublic fetches one page of the public timeline
func (w *Walker) FetchPublic(dir Direction) error {
	return w.FetchPage(mastodon.TimelinePublic, dir)
}

// FetchTag fetches one page of a hashtag timeline
func (w *Walker) FetchTag(tag string, dir Direction) error {
	return w.FetchPage(mastodon.TagTimeline(tag), dir)
}

// cursorKey derives the record store key for a timeline/direction cursor
func cursorKey(dir Direction, path string) string {
	return "cache/link-" + string(dir) + "/" + path
}

// FetchPage advances pagination for the given timeline path by exactly one
// page in the given direction.
//
// The persisted cursor decides the target URL: an existing link for the
// direction is followed, a missing cursor means the collection endpoint
// (the newest page). When a next-direction cursor already points at the
// URL it was last fetched from, the walk has bottomed out and no request
// is made. After a successful fetch the page's entries are archived oldest
// to newest and the cursor is rewritten with last_get set to the target,
// even when the page was empty.
func (w *Walker) FetchPage(path string, dir Direction) error {
	if dir != DirectionPrev && dir != DirectionNext {
		return fmt.Errorf("invalid direction: %q", dir)
	}

	key := cursorKey(dir, path)
	links := make(map[string]string)
	found, err := w.store.Get(key, &links)
	if err != nil {
		return err
	}

	var target string
	if found {
		if u := links[string(dir)]; u != "" {
			if dir == DirectionNext && links[lastGetKey] == u {
				w.logger.InfoWithFields("end of history reached", map[string]interface{}{
					"timeline":  path,
					"direction": string(dir),
					"url":       u,
				})
				return nil
			}
			target = u
		}
	}
	if target == "" {
		// First run, or no link recorded for this direction yet:
		// start from the newest page of the collection.
		target = mastodon.TimelineURL(w.client.BaseURL(), path)
	}

	if w.limiter != nil {
		w.limiter.Wait()
	}

	w.logger.InfoWithFields("fetching timeline page", map[string]interface{}{
		"timeline":  path,
		"direction": string(dir),
		"url":       target,
	})

	var page []json.RawMessage
	header, err := w.client.GetJSON(target, &page)
	if err != nil {
		return err
	}

	// The API returns newest-first; archive in chronological order so the
	// save sequence mirrors the timeline.
	for i := len(page) - 1; i >= 0; i-- {
		if err := w.archiver.Status(page[i]); err != nil {
			return err
		}
	}

	if linkHeader := header.Get("Link"); linkHeader != "" {
		links = mastodon.ParseLinks(linkHeader)
	}
	// An absent Link header keeps the previous mapping. A later walk may
	// then target a link from an earlier page; accepted staleness risk.
	links[lastGetKey] = target

	w.logger.DebugWithFields("updating cursor", map[string]interface{}{
		"key":      key,
		"last_get": target,
		"entries":  len(page),
	})
	return w.store.Put(key, links)
}
