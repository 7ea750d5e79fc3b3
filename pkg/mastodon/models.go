package mastodon

// App holds the fields consumed from an app-registration response. The
// full response body is stored verbatim under the "cred" key; this struct
// only extracts what the token exchange needs.
type App struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Token holds the fields consumed from a password-grant token response.
// The full response body is stored verbatim under the "auth" key.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// RateLimit is the last observed rate-limit snapshot, stored under
// "cache/ratelimit". Values are kept verbatim as the X-RateLimit-* headers
// delivered them; parsing happens at the point of use.
type RateLimit struct {
	Limit     string `json:"limit"`
	Remaining string `json:"remaining"`
	Reset     string `json:"reset"`
}
