package mastodon

import (
	"net/url"
	"strings"
)

const (
	appsEndpoint      = "/api/v1/apps"
	tokenEndpoint     = "/oauth/token"
	timelinesEndpoint = "/api/v1/timelines/"
)

// Timeline paths understood by the walker
const (
	TimelineHome   = "home"
	TimelinePublic = "public"
)

// AppsURL returns the app-registration endpoint for an instance
func AppsURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + appsEndpoint
}

// TokenURL returns the OAuth token endpoint for an instance
func TokenURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + tokenEndpoint
}

// TimelineURL returns the collection endpoint for a timeline path such as
// "home", "public", or "tag/<encoded-tag>"
func TimelineURL(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + timelinesEndpoint + path
}

// TagTimeline returns the timeline path for a hashtag, percent-encoding
// the tag name so it is safe in a URL path segment
func TagTimeline(tag string) string {
	return "tag/" + url.PathEscape(tag)
}
