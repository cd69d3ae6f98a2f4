package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/catalogue"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/scraper"
)

// SheetOverlays fetches the curated supplemental worksheets through the
// spreadsheet proxy. The proxy returns the worksheet as a cell grid; the
// first row is the header.
type SheetOverlays struct {
	baseURL string
	client  *http.Client
}

func NewSheetOverlays(baseURL string) *SheetOverlays {
	return &SheetOverlays{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *SheetOverlays) Rows(ctx context.Context, src catalogue.Source) ([]scraper.OverlayRow, error) {
	if src.SpreadsheetID == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("id", src.SpreadsheetID)
	query.Set("worksheet", strconv.Itoa(src.WorksheetID))

	body, err := s.get(ctx, s.baseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var grid [][]any
	if err := sonic.Unmarshal(body, &grid); err != nil {
		return nil, fmt.Errorf("sonic.Unmarshal: %w", err)
	}

	return scraper.NormalizeOverlay(grid), nil
}

func (s *SheetOverlays) get(ctx context.Context, rawURL string) (body []byte, err error) {
	var resp *http.Response
	err = backoff.Retry(
		func() error {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if reqErr != nil {
				return backoff.Permanent(fmt.Errorf("http.NewRequestWithContext: %w", reqErr))
			}

			var httpErr error
			resp, httpErr = s.client.Do(req)
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
		return nil, err
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close reader: %w", closeErr)
		}
	}()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	return body, nil
}
