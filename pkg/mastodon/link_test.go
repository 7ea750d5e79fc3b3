package mastodon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLinks(t *testing.T) {
	t.Run("NextAndPrev", func(t *testing.T) {
		header := `<https://example.social/api/v1/timelines/home?max_id=1>; rel="next", <https://example.social/api/v1/timelines/home?min_id=9>; rel="prev"`
		links := ParseLinks(header)
		assert.Equal(t, map[string]string{
			"next": "https://example.social/api/v1/timelines/home?max_id=1",
			"prev": "https://example.social/api/v1/timelines/home?min_id=9",
		}, links)
	})

	t.Run("UnknownRelsRetained", func(t *testing.T) {
		links := ParseLinks(`<https://example.social/a>; rel="first", <https://example.social/b>; rel="next"`)
		assert.Equal(t, "https://example.social/a", links["first"])
	})

	t.Run("WhitespaceTolerant", func(t *testing.T) {
		links := ParseLinks(`<https://example.social/a> ; rel="next"`)
		assert.Equal(t, "https://example.social/a", links["next"])
	})

	t.Run("EmptyHeader", func(t *testing.T) {
		assert.Empty(t, ParseLinks(""))
	})

	t.Run("GarbageHeader", func(t *testing.T) {
		assert.Empty(t, ParseLinks("not a link header at all"))
	})
}
