package unb

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/unbelievaboat-go/internal/rest"
)

// DefaultBaseURL is the production API base path.
const DefaultBaseURL = "https://unbelievaboat.com/api/v1"

// Application is the entry point of the client. It holds the application
// token and the numeric application ID decoded from it, and is immutable
// after construction. All entities derived from one Application share its
// transport and token.
type Application struct {
	// ID is the numeric application ID, decoded from the token with no
	// network call.
	ID int64

	client *rest.Client
	logger *slog.Logger
}

// settings collects construction options.
type settings struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes an Application.
type Option func(*settings)

// WithBaseURL overrides the API base URL. Useful for tests against a fake
// server such as the unbtest package.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) { s.baseURL = baseURL }
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(userAgent string) Option {
	return func(s *settings) { s.userAgent = userAgent }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.timeout = timeout }
}

// WithHTTPClient supplies a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) { s.httpClient = client }
}

// WithLogger supplies a structured logger. Defaults to slog.Default().
// The token itself is never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New creates an Application from a token obtained at
// https://unbelievaboat.com/applications. The application ID is decoded
// from the token locally; no request is issued.
func New(token string, opts ...Option) (*Application, error) {
	appID, err := decodeAppID(token)
	if err != nil {
		return nil, err
	}

	s := settings{
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	client, err := rest.New(rest.Config{
		BaseURL:    s.baseURL,
		Token:      token,
		UserAgent:  s.userAgent,
		Timeout:    s.timeout,
		HTTPClient: s.httpClient,
		Logger:     s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}

	return &Application{
		ID:     appID,
		client: client,
		logger: s.logger,
	}, nil
}

// GetGuild builds a guild reference without querying the API. The reference
// carries no metadata; use FetchGuild for that.
func (a *Application) GetGuild(guild any) (*PartialGuild, error) {
	id, err := ResolveID(guild)
	if err != nil {
		return nil, err
	}

	return &PartialGuild{ID: id, app: a}, nil
}

// FetchGuild fetches the guild's metadata (name, icon, symbol, owner,
// member count) and returns a full Guild.
func (a *Application) FetchGuild(ctx context.Context, guild any) (*Guild, error) {
	id, err := ResolveID(guild)
	if err != nil {
		return nil, err
	}

	var payload guildPayload
	if err := a.getJSON(ctx, fmt.Sprintf("/guilds/%d", id), &payload); err != nil {
		return nil, err
	}

	return newGuild(a, id, payload), nil
}

// getJSON issues a GET, maps the status code, and decodes the body into v.
func (a *Application) getJSON(ctx context.Context, path string, v any) error {
	resp, err := a.client.Get(ctx, path, nil)
	if err != nil {
		return err
	}

	if err := mapStatus(resp.StatusCode, resp.Body); err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrParse, err)
	}

	return nil
}

// decodeAppID extracts the app_id claim from the middle segment of the
// dot-delimited token. The segment is base64url-encoded JSON.
func decodeAppID(token string) (int64, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: token is not in the expected format", ErrParse)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return 0, fmt.Errorf("%w: decoding token payload: %v", ErrParse, err)
	}

	var claims struct {
		AppID any `json:"app_id"`
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&claims); err != nil {
		return 0, fmt.Errorf("%w: token payload is not JSON: %v", ErrParse, err)
	}

	switch v := claims.AppID.(type) {
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: app_id is not an integer: %v", ErrParse, err)
		}
		return id, nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: app_id is not numeric: %v", ErrParse, err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("%w: token has no app_id claim", ErrParse)
	}
}
