// Package client provides a Go client for the CodeDump.io API.
//
// Basic usage:
//
//	c := client.New(client.WithCredentials(key, secret))
//	url, err := c.AddCode(ctx, client.NewDump{Title: "hello", Code: "fmt.Println(1)", Access: "public", Language: "go"})
//	langs, err := c.GetLanguages(ctx)
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the default CodeDump.io API URL.
	DefaultBaseURL = "https://codedump.io/api"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	userAgent = "codedump-go"
)

// Command names a remote endpoint.
type Command string

const (
	// CommandAddCode stores a new code dump.
	CommandAddCode Command = "code/add"
	// CommandGetLanguages lists the languages the API accepts.
	CommandGetLanguages Command = "languages/get"
	// CommandGetAccess lists the access levels available to the caller.
	CommandGetAccess Command = "access/get"
	// CommandGetDumps lists the caller's dumps.
	CommandGetDumps Command = "dumps/get"
)

// Form fields carrying the credentials. Request parameters never override them.
const (
	fieldTokenKey    = "token_key"
	fieldTokenSecret = "token_secret"
)

// Client is a CodeDump.io API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	preCheck   bool
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	pending url.Values
	details ResponseDetails
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the API key and secret issued by CodeDump.io.
func WithCredentials(key, secret string) Option {
	return func(c *Client) {
		c.apiKey = key
		c.apiSecret = secret
	}
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. It is copied when WithTimeout
// is also given, so the caller's client is never modified.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout, whatever the order of options.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger receiving warnings and errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPreCheck makes every AddCode call validate access and language
// against the API first.
func WithPreCheck(enabled bool) Option {
	return func(c *Client) {
		c.preCheck = enabled
	}
}

// New creates a new CodeDump client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
		pending: url.Values{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// ResponseDetails describes the transport side of the most recent call.
type ResponseDetails struct {
	URL           string
	StatusCode    int
	ContentType   string
	ContentLength int64
	Duration      time.Duration
}

// LastResponseDetails returns the details of the most recent call.
func (c *Client) LastResponseDetails() ResponseDetails {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.details
}

// SetParameter adds a parameter to the next call made with Do.
// An empty value is logged as a warning but still stored.
func (c *Client) SetParameter(name, value string) bool {
	if value == "" {
		c.warn("SetParameter", "You cannot set a parameter with an empty value", "name", name)
	}
	c.mu.Lock()
	c.pending.Set(name, value)
	c.mu.Unlock()
	return true
}

// Do sends the parameters collected with SetParameter to command and
// returns the first element of the response data. The pending parameters
// are cleared whatever the outcome.
func (c *Client) Do(ctx context.Context, command Command) (json.RawMessage, error) {
	c.mu.Lock()
	params := c.pending
	c.pending = url.Values{}
	c.mu.Unlock()

	return c.execute(ctx, command, params)
}

type envelope struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
}

func (c *Client) execute(ctx context.Context, command Command, params url.Values) (json.RawMessage, error) {
	if c.apiKey == "" {
		c.logger.Error("No API key defined", "op", "execute", "command", string(command))
		return nil, &Error{Code: ErrNoAPIKey, Message: "no API key defined"}
	}

	form := url.Values{}
	for name, values := range params {
		if name == fieldTokenKey || name == fieldTokenSecret {
			continue
		}
		form[name] = values
	}
	form.Set(fieldTokenKey, c.apiKey)
	form.Set(fieldTokenSecret, c.apiSecret)

	endpoint := c.baseURL + "/" + string(command)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordDetails(ResponseDetails{URL: endpoint, Duration: time.Since(start)})
		return nil, &Error{Code: ErrTransport, Message: fmt.Sprintf("making request: %v", err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.recordDetails(ResponseDetails{
		URL:           endpoint,
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: int64(len(body)),
		Duration:      time.Since(start),
	})
	if err != nil {
		return nil, &Error{Code: ErrTransport, Status: resp.StatusCode, Message: fmt.Sprintf("reading response: %v", err), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Code: ErrDecode, Status: resp.StatusCode, Message: fmt.Sprintf("decoding response: %v", err), Err: err}
	}
	if !env.Success {
		msg := "request was not successful"
		if reason := firstNonEmpty(env.Message, env.Error); reason != "" {
			msg = reason
		}
		return nil, &Error{Code: ErrRejected, Status: resp.StatusCode, Message: msg}
	}
	if len(env.Data) == 0 {
		return json.RawMessage("null"), nil
	}
	return env.Data[0], nil
}

func (c *Client) recordDetails(d ResponseDetails) {
	c.mu.Lock()
	c.details = d
	c.mu.Unlock()
}

// GetLanguages returns the language identifiers accepted by the API.
func (c *Client) GetLanguages(ctx context.Context) ([]string, error) {
	var langs []string
	if err := c.get(ctx, CommandGetLanguages, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// GetAccess returns the access levels available to the caller.
func (c *Client) GetAccess(ctx context.Context) ([]string, error) {
	var access []string
	if err := c.get(ctx, CommandGetAccess, &access); err != nil {
		return nil, err
	}
	return access, nil
}

// Dump is a code dump owned by the caller.
type Dump struct {
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Access      string `json:"access,omitempty"`
	Created     string `json:"created,omitempty"`
}

// GetMyDumps returns the dumps stored under the caller's credentials.
func (c *Client) GetMyDumps(ctx context.Context) ([]Dump, error) {
	var dumps []Dump
	if err := c.get(ctx, CommandGetDumps, &dumps); err != nil {
		return nil, err
	}
	return dumps, nil
}

func (c *Client) get(ctx context.Context, command Command, v any) error {
	raw, err := c.execute(ctx, command, url.Values{})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Code: ErrDecode, Status: http.StatusOK, Message: fmt.Sprintf("decoding %s response: %v", command, err), Err: err}
	}
	return nil
}

func (c *Client) warn(op, msg string, args ...any) {
	c.logger.Warn(msg, append([]any{"op", op}, args...)...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
