package mastodon

import "regexp"

// linkPattern matches one `<url>; rel="name"` element of a Link header.
var linkPattern = regexp.MustCompile(`<([^>]*)>\s*;\s*rel="([^"]*)"`)

// ParseLinks parses an HTTP Link header value into a relation-to-URL
// mapping. Unknown relations are retained. An empty or unparsable header
// yields an empty map.
func ParseLinks(header string) map[string]string {
	links := make(map[string]string)
	for _, m := range linkPattern.FindAllStringSubmatch(header, -1) {
		links[m[2]] = m[1]
	}
	return links
}
