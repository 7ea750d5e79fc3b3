package mastodon

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tootarchive/pkg/auth"
	"tootarchive/pkg/logger"
	"tootarchive/pkg/store"
)

// Error types for Mastodon API operations
type ErrorType string

const (
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeRequest ErrorType = "request"
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeParsing ErrorType = "parsing"
)

// Error represents a Mastodon API error. The raw response body is carried
// in Message so a bad registration or fetch can be diagnosed from the log.
type Error struct {
	Type    ErrorType
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mastodon %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Record store keys owned by the client
const (
	credKey      = "cred"
	authKey      = "auth"
	RateLimitKey = "cache/ratelimit"
)

const (
	appName      = "tootarchive"
	appWebsite   = "https://github.com/yourusername/tootarchive"
	oobRedirect  = "urn:ietf:wg:oauth:2.0:oob"
	tokenScope   = "read"
	jsonMimeType = "application/json"
)

// Client performs authenticated requests against a Mastodon instance.
// App registration and the password-grant token exchange each happen at
// most once per record store; their responses are persisted under "cred"
// and "auth" and reused on every later run.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	store       *store.Store
	credentials auth.Provider
	logger      logger.Logger
	accessToken string
}

// New creates a new Mastodon API client
func New(baseURL, userAgent string, timeout time.Duration, st *store.Store, credentials auth.Provider, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		userAgent:   userAgent,
		store:       st,
		credentials: credentials,
		logger:      log,
	}
}

// BaseURL returns the instance base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ensureApp returns the registered application credentials, performing the
// one-time registration POST when no "cred" document exists yet.
func (c *Client) ensureApp() (*App, error) {
	var app App
	err := c.store.GetOrCreate(credKey, &app, func() (interface{}, error) {
		c.logger.InfoWithFields("registering application", map[string]interface{}{
			"url": AppsURL(c.baseURL),
		})

		form := url.Values{
			"client_name":   {appName},
			"website":       {appWebsite},
			"redirect_uris": {oobRedirect},
			"scopes":        {tokenScope},
		}
		body, err := c.postForm(AppsURL(c.baseURL), form)
		if err != nil {
			return nil, err
		}

		var probe App
		if err := json.Unmarshal(body, &probe); err != nil || probe.ClientID == "" || probe.ClientSecret == "" {
			return nil, &Error{
				Type:    ErrorTypeConfig,
				Code:    http.StatusOK,
				Message: fmt.Sprintf("app registration response lacks client credentials: %s", body),
			}
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ensureToken returns the access token, running the one-time interactive
// password grant when no "auth" document exists yet.
func (c *Client) ensureToken() (string, error) {
	if c.accessToken != "" {
		return c.accessToken, nil
	}

	app, err := c.ensureApp()
	if err != nil {
		return "", err
	}

	var token Token
	err = c.store.GetOrCreate(authKey, &token, func() (interface{}, error) {
		creds, err := c.credentials.Credentials()
		if err != nil {
			return nil, fmt.Errorf("failed to obtain credentials: %w", err)
		}

		c.logger.InfoWithFields("requesting access token", map[string]interface{}{
			"url":      TokenURL(c.baseURL),
			"username": creds.Username,
		})

		form := url.Values{
			"client_id":     {app.ClientID},
			"client_secret": {app.ClientSecret},
			"grant_type":    {"password"},
			"username":      {creds.Username},
			"password":      {creds.Password},
			"scope":         {tokenScope},
		}
		body, err := c.postForm(TokenURL(c.baseURL), form)
		if err != nil {
			return nil, err
		}

		var probe Token
		if err := json.Unmarshal(body, &probe); err != nil || probe.AccessToken == "" {
			return nil, &Error{
				Type:    ErrorTypeConfig,
				Code:    http.StatusOK,
				Message: fmt.Sprintf("token response lacks access token: %s", body),
			}
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		return "", err
	}

	c.accessToken = token.AccessToken
	return c.accessToken, nil
}

// postForm issues a form-encoded POST and returns the body after checking
// the JSON content type and 200 status. Anything else is a fatal
// configuration error carrying the raw body.
func (c *Client) postForm(rawurl string, form url.Values) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, rawurl, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Type: ErrorTypeNetwork, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Type: ErrorTypeNetwork, Code: resp.StatusCode, Message: fmt.Sprintf("failed to read response body: %v", err)}
	}

	if resp.StatusCode != http.StatusOK || !isJSON(resp.Header.Get("Content-Type")) {
		return nil, &Error{
			Type:    ErrorTypeConfig,
			Code:    resp.StatusCode,
			Message: string(body),
		}
	}
	return body, nil
}

// GetJSON performs an authenticated GET, decodes the JSON response body
// into target, and returns the response headers. A non-200 status or a
// non-JSON content type is a fatal request error carrying the raw body.
// Rate-limit headers on a successful response overwrite the stored
// snapshot unconditionally.
func (c *Client) GetJSON(rawurl string, target interface{}) (http.Header, error) {
	token, err := c.ensureToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, &Error{Type: ErrorTypeNetwork, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Type: ErrorTypeNetwork, Code: resp.StatusCode, Message: fmt.Sprintf("failed to read response body: %v", err)}
	}

	if resp.StatusCode != http.StatusOK || !isJSON(resp.Header.Get("Content-Type")) {
		return nil, &Error{
			Type:    ErrorTypeRequest,
			Code:    resp.StatusCode,
			Message: string(body),
		}
	}

	if err := c.updateRateLimit(resp.Header); err != nil {
		return nil, err
	}

	if target != nil {
		if err := json.Unmarshal(body, target); err != nil {
			bodyPreview := string(body)
			if len(bodyPreview) > 200 {
				bodyPreview = bodyPreview[:200] + "..."
			}
			c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
				"url":          rawurl,
				"status":       resp.StatusCode,
				"error":        err.Error(),
				"body_preview": bodyPreview,
			})
			return nil, &Error{
				Type:    ErrorTypeParsing,
				Code:    resp.StatusCode,
				Message: fmt.Sprintf("failed to parse JSON: %v", err),
			}
		}
	}

	return resp.Header, nil
}

// do performs an HTTP request with request/response logging
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// updateRateLimit overwrites the stored rate-limit snapshot from response
// headers. The snapshot is replaced whole; partial header sets are stored
// as-is, never merged with a previous snapshot.
func (c *Client) updateRateLimit(h http.Header) error {
	snapshot := RateLimit{
		Limit:     h.Get("X-RateLimit-Limit"),
		Remaining: h.Get("X-RateLimit-Remaining"),
		Reset:     h.Get("X-RateLimit-Reset"),
	}
	if snapshot.Limit == "" && snapshot.Remaining == "" && snapshot.Reset == "" {
		return nil
	}

	c.logger.DebugWithFields("rate limit snapshot", map[string]interface{}{
		"limit":     snapshot.Limit,
		"remaining": snapshot.Remaining,
		"reset":     snapshot.Reset,
	})
	return c.store.Put(RateLimitKey, snapshot)
}

// isJSON reports whether a Content-Type header denotes the service's JSON type
func isJSON(contentType string) bool {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType) == jsonMimeType
}
