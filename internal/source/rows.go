package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/text/encoding/charmap"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/catalogue"
)

// HTTPRows fetches semicolon-delimited result files from the Secretary of
// State FTP mirror. The feed is latin-1 encoded and has no header row.
type HTTPRows struct {
	client *http.Client
}

func NewHTTPRows() *HTTPRows {
	return &HTTPRows{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch downloads one source file and splits it into rows. The whole file is
// read before any row is returned so a mid-transfer failure writes nothing.
func (h *HTTPRows) Fetch(ctx context.Context, src catalogue.Source) (rows [][]string, err error) {
	var resp *http.Response
	err = backoff.Retry(
		func() error {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
			if reqErr != nil {
				return backoff.Permanent(fmt.Errorf("http.NewRequestWithContext: %w", reqErr))
			}

			var httpErr error
			resp, httpErr = h.client.Do(req)
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

	rows, err = readRows(resp.Body)
	return rows, err
}

func readRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv.Read: %w", err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
