package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rotisserie/eris"

	"network-insights-go/internal/logger"
	"network-insights-go/internal/types"
)

// maxRetryTime bounds the retries of one remote fetch.
var maxRetryTime = 20 * time.Second

var httpClient = &http.Client{}

// FetchBudget is the longest a Fetch with the given per-attempt timeout can
// take: the retry window plus one last attempt.
func FetchBudget(timeout time.Duration) time.Duration {
	return maxRetryTime + timeout
}

// IsRemote reports whether src is an http(s) URL rather than a file path.
func IsRemote(src string) bool {
	l := strings.ToLower(src)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Fetch downloads a workbook with exponential backoff. 4xx responses are not
// retried; each attempt is bounded by timeout.
func Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	log := logger.New().WithField("component", "dataset.fetch").WithField("url", url)
	var body []byte
	var lastErr error

	op := func() error {
		actx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(actx, http.MethodGet, url, nil)
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("fetch attempt failed")
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			lastErr = err
			return err
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			lastErr = fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
			return backoff.Permanent(lastErr)
		}
		if resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
			log.WithField("http_status", resp.StatusCode).Warn("fetch attempt failed")
			return lastErr
		}
		body = b
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, eris.Wrap(lastErr, "fetch workbook")
	}
	log.WithField("bytes", len(body)).Debug("workbook fetched")
	return body, nil
}

// LoadSource loads service records from a local path or a remote URL.
func LoadSource(ctx context.Context, src string, timeout time.Duration) (types.RecordSet, error) {
	if !IsRemote(src) {
		return Load(src)
	}
	b, err := Fetch(ctx, src, timeout)
	if err != nil {
		return types.RecordSet{}, err
	}
	return LoadReader(bytes.NewReader(b))
}

// LoadNPSSource loads survey counts from a local path or a remote URL.
func LoadNPSSource(ctx context.Context, src string, timeout time.Duration) ([]types.NPSCounts, error) {
	if !IsRemote(src) {
		return LoadNPS(src)
	}
	b, err := Fetch(ctx, src, timeout)
	if err != nil {
		return nil, err
	}
	return LoadNPSReader(bytes.NewReader(b))
}
