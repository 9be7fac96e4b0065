package pellematic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// MIN_FETCH_TIMEOUT is the lower bound recommended by the device vendor;
// the controller routinely needs more than two seconds for a full dump.
const MIN_FETCH_TIMEOUT = 2500 * time.Millisecond

// TouchClient is the transport to a Pelletronic Touch JSON interface.
// FetchRaw returns the undecoded response body; charset handling and
// payload repair happen upstream.
type TouchClient interface {
	FetchRaw(ctx context.Context) ([]byte, error)
	WriteValue(ctx context.Context, componentKey, fieldKey, value string) error
	Charset() string
}

type HTTPTouchClient struct {
	host     string
	port     uint
	password string
	charset  string
	client   *http.Client
	logger   *zap.Logger
}

func NewHTTPTouchClient(host string, port uint, password, charset string, timeout time.Duration, logger *zap.Logger) (*HTTPTouchClient, error) {
	if host == "" {
		return nil, fmt.Errorf("touch client: host is required")
	}
	if password == "" {
		return nil, fmt.Errorf("touch client: password is required")
	}
	if timeout < MIN_FETCH_TIMEOUT {
		timeout = MIN_FETCH_TIMEOUT
	}
	return &HTTPTouchClient{
		host:     host,
		port:     port,
		password: password,
		charset:  charset,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(zap.String("component", "touch_client")),
	}, nil
}

// FetchURL builds the full-dump endpoint. The trailing "?" is mandatory;
// without it the controller answers with a truncated document.
func (c *HTTPTouchClient) FetchURL() string {
	return fmt.Sprintf("http://%s:%d/%s/all?", c.host, c.port, c.password)
}

// WriteURL builds the raw write endpoint for a single field.
func (c *HTTPTouchClient) WriteURL(componentKey, fieldKey, value string) string {
	return fmt.Sprintf("http://%s:%d/%s/%s_%s=%s", c.host, c.port, c.password, componentKey, fieldKey, value)
}

func (c *HTTPTouchClient) FetchRaw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FetchURL(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("touch fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("touch fetch: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("touch fetch: %w", err)
	}
	c.logger.Debug("touch fetch ok", zap.Int("bytes", len(body)))
	return body, nil
}

func (c *HTTPTouchClient) WriteValue(ctx context.Context, componentKey, fieldKey, value string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.WriteURL(componentKey, fieldKey, value), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("touch write: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("touch write: unexpected status %d", resp.StatusCode)
	}
	c.logger.Debug("touch write ok",
		zap.String("component", componentKey),
		zap.String("field", fieldKey),
		zap.String("value", value))
	return nil
}

func (c *HTTPTouchClient) Charset() string {
	return c.charset
}

// ensure interface compliance
var _ TouchClient = (*HTTPTouchClient)(nil)
