package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
)

// BoundaryClient talks to the boundary service for the one lookup the
// matcher cannot do from row data alone: which member of a boundary set a
// known boundary intersects.
type BoundaryClient struct {
	baseURL string
	client  *http.Client
}

func NewBoundaryClient(baseURL string) *BoundaryClient {
	return &BoundaryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type boundaryObject struct {
	Slug string `json:"slug"`
}

type boundaryListResponse struct {
	Objects []boundaryObject `json:"objects"`
}

// FirstIntersection returns the slug of the first member of set that the
// given boundary intersects, or "" when the service finds none.
func (b *BoundaryClient) FirstIntersection(ctx context.Context, boundary, set string) (string, error) {
	query := url.Values{}
	query.Set("intersects", boundary)
	query.Set("sets", set)

	var resp *http.Response
	err := backoff.Retry(
		func() error {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet,
				b.baseURL+"boundaries/?"+query.Encode(), nil)
			if reqErr != nil {
				return backoff.Permanent(fmt.Errorf("http.NewRequestWithContext: %w", reqErr))
			}

			var httpErr error
			resp, httpErr = b.client.Do(req)
			if httpErr != nil {
				return fmt.Errorf("http.Do: %w", httpErr)
			}
			if resp.StatusCode != http.StatusOK {
				_ = resp.Body.Close()
				return fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
			}

			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), 10),
			ctx,
		),
	)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var list boundaryListResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("decode boundary response: %w", err)
	}

	if len(list.Objects) == 0 {
		return "", nil
	}
	return list.Objects[0].Slug, nil
}
