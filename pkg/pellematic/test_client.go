package pellematic

import (
	"context"
	"errors"
	"fmt"
)

// TestTouchClient serves a fixed payload for actor and pipeline tests.
type TestTouchClient struct {
	Payload      []byte
	PayloadError error
	CharsetName  string
	Writes       []string
}

func (c *TestTouchClient) FetchRaw(ctx context.Context) ([]byte, error) {
	if c.PayloadError != nil {
		return nil, c.PayloadError
	}
	if c.Payload == nil {
		return nil, errors.New("test touch client: no payload configured")
	}
	return c.Payload, nil
}

func (c *TestTouchClient) WriteValue(ctx context.Context, componentKey, fieldKey, value string) error {
	c.Writes = append(c.Writes, fmt.Sprintf("%s_%s=%s", componentKey, fieldKey, value))
	return nil
}

func (c *TestTouchClient) Charset() string {
	if c.CharsetName == "" {
		return "ISO-8859-1"
	}
	return c.CharsetName
}

// ensure interface compliance
var _ TouchClient = (*TestTouchClient)(nil)
