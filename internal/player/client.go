package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/woominecraft/wmcbridge/internal/types/player"
)

type ProfileClient interface {
	Lookup(ctx context.Context, name string) (*player.Profile, error)
}

type HTTPProfileClient struct {
	Client  *http.Client
	BaseURL string
}

func (c *HTTPProfileClient) Lookup(ctx context.Context, name string) (*player.Profile, error) {
	body, err := json.Marshal([]string{url.PathEscape(name)})
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	endpoint := fmt.Sprintf("%s/profiles/minecraft", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrLookupFailed, resp.StatusCode)
	}

	var profiles []player.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, ErrProfileNotFound
	}
	if len(profiles) == 0 {
		return nil, ErrProfileNotFound
	}
	return &profiles[0], nil
}
