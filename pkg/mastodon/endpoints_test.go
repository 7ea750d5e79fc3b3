package mastodon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpoints(t *testing.T) {
	assert.Equal(t, "https://example.social/api/v1/apps", AppsURL("https://example.social"))
	assert.Equal(t, "https://example.social/oauth/token", TokenURL("https://example.social/"))
	assert.Equal(t, "https://example.social/api/v1/timelines/home", TimelineURL("https://example.social", TimelineHome))
	assert.Equal(t, "https://example.social/api/v1/timelines/public", TimelineURL("https://example.social", TimelinePublic))
}

func TestTagTimeline(t *testing.T) {
	assert.Equal(t, "tag/golang", TagTimeline("golang"))
	assert.Equal(t, "tag/caf%C3%A9", TagTimeline("café"))
	assert.Equal(t, "tag/with%2Fslash", TagTimeline("with/slash"))
}
