package stock

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// RemoteReleaser mirrors a release to an external inventory service.
// Strictly best-effort: callers ignore the error beyond logging it. The
// local ledger stays the single source of truth for available quantity.
type RemoteReleaser struct {
	BaseURL string
	Client  *http.Client
}

func NewRemoteReleaser(baseURL string) *RemoteReleaser {
	return &RemoteReleaser{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *RemoteReleaser) Release(ctx context.Context, sku string, qty int) error {
	q := url.Values{}
	q.Set("sku", sku)
	q.Set("quantity", strconv.Itoa(qty))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/inventory/release?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("inventory release: unexpected status %d", resp.StatusCode)
	}
	return nil
}
