// Package fetch performs the bounded HTTP retrievals the validation checks
// read from: one main page fetch per validation, an optional secondary
// contact page fetch, and short existence probes.
package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies the validator to the sites it checks
const DefaultUserAgent = "Mozilla/5.0 (compatible; ProspectValidator/1.0)"

// maxIssueMessageLen caps error text so it stays usable as an issue label
const maxIssueMessageLen = 100

// Kind classifies a failed retrieval
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindTLS        Kind = "tls"
	KindConnection Kind = "connection"
	KindRedirects  Kind = "redirects"
	KindOther      Kind = "other"
)

// Error describes a failed retrieval in terms the checks can score
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Outcome is the read-only result of one retrieval. Either StatusCode is
// set and Err is nil, or the retrieval failed and only Err plus FinalURL
// and Elapsed carry information.
type Outcome struct {
	FinalURL   string
	StatusCode int
	Elapsed    time.Duration
	Header     http.Header
	Body       string
	Err        *Error
}

// OK reports whether the retrieval produced a usable page
func (o *Outcome) OK() bool {
	return o.Err == nil && o.StatusCode < 400
}

// Config holds the fetch tuning. It is fixed at client construction;
// start from DefaultConfig and override fields as needed.
type Config struct {
	UserAgent        string
	Timeout          time.Duration
	SecondaryTimeout time.Duration
	ProbeTimeout     time.Duration
	MaxRedirects     int
	MaxBodyBytes     int64
}

// DefaultConfig returns the standard fetch tuning
func DefaultConfig() Config {
	return Config{
		UserAgent:        DefaultUserAgent,
		Timeout:          15 * time.Second,
		SecondaryTimeout: 10 * time.Second,
		ProbeTimeout:     3 * time.Second,
		MaxRedirects:     10,
		MaxBodyBytes:     10 * 1024 * 1024,
	}
}

var errTooManyRedirects = errors.New("too many redirects")

// Client issues all HTTP requests for the validation pipeline
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
}

// NewClient builds a client around the given tuning. A nil logger falls
// back to slog.Default().
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        20,
		IdleConnTimeout:     30 * time.Second,
	}

	httpClient := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

// Fetch retrieves the main page for a validation run
func (c *Client) Fetch(ctx context.Context, rawURL string) *Outcome {
	return c.get(ctx, rawURL, c.cfg.Timeout)
}

// FetchSecondary retrieves a supporting page, such as a contact page,
// under the shorter secondary timeout
func (c *Client) FetchSecondary(ctx context.Context, rawURL string) *Outcome {
	return c.get(ctx, rawURL, c.cfg.SecondaryTimeout)
}

// Head probes a URL under the probe timeout and returns the final status
// code. Servers that reject HEAD with 405 are probed again with GET.
func (c *Client) Head(ctx context.Context, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	status, err := c.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}
	if status == http.StatusMethodNotAllowed {
		return c.do(ctx, http.MethodGet, rawURL)
	}
	return status, nil
}

func (c *Client) get(ctx context.Context, rawURL string, timeout time.Duration) *Outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &Outcome{FinalURL: rawURL, Err: classify(err)}
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		ferr := classify(err)
		c.logger.Debug("fetch failed", "url", rawURL, "kind", string(ferr.Kind), "error", err)
		return &Outcome{FinalURL: rawURL, Elapsed: elapsed, Err: ferr}
	}
	defer resp.Body.Close()

	body, err := c.readBody(resp)
	if err != nil {
		ferr := classify(err)
		c.logger.Debug("body read failed", "url", rawURL, "kind", string(ferr.Kind), "error", err)
		return &Outcome{FinalURL: resp.Request.URL.String(), Elapsed: elapsed, Err: ferr}
	}

	return &Outcome{
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Elapsed:    elapsed,
		Header:     resp.Header,
		Body:       body,
	}
}

func (c *Client) do(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build %s request: %w", method, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// drain a bounded amount so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	return resp.StatusCode, nil
}

// setHeaders applies the request headers every retrieval sends.
// Accept-Encoding is set explicitly so the transport does not strip the
// Content-Encoding response header; decompression happens in readBody.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
}

func (c *Client) readBody(resp *http.Response) (string, error) {
	var reader io.Reader = io.LimitReader(resp.Body, c.cfg.MaxBodyBytes)

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return "", fmt.Errorf("gzip body: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fr := flate.NewReader(reader)
		defer fr.Close()
		reader = fr
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	// Transcode to UTF-8 using the declared or sniffed charset. When the
	// conversion cannot be set up the raw bytes stand.
	decoded, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return string(raw), nil
	}
	text, err := io.ReadAll(decoded)
	if err != nil {
		return string(raw), nil
	}
	return string(text), nil
}

// classify maps a transport error onto the failure kinds the health check
// scores
func classify(err error) *Error {
	kind := KindOther

	var certVerify *tls.CertificateVerificationError
	var hostname x509.HostnameError
	var unknownAuthority x509.UnknownAuthorityError
	var certInvalid x509.CertificateInvalidError
	var recordHeader tls.RecordHeaderError
	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError

	switch {
	case errors.Is(err, errTooManyRedirects):
		kind = KindRedirects
	case errors.As(err, &certVerify), errors.As(err, &hostname),
		errors.As(err, &unknownAuthority), errors.As(err, &certInvalid),
		errors.As(err, &recordHeader):
		kind = KindTLS
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.As(err, &dnsErr), errors.As(err, &opErr):
		kind = KindConnection
	}

	msg := err.Error()
	if len(msg) > maxIssueMessageLen {
		msg = msg[:maxIssueMessageLen]
	}
	return &Error{Kind: kind, Message: msg}
}
