package install

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"resourcehub/internal/logging"
	"resourcehub/internal/rerr"
	"resourcehub/internal/security"
)

// newHTTPClient builds an HTTPS client whose dialer re-checks the peer
// address at connect time (defending against DNS rebinding between
// validate_url and the actual connection) and whose total request
// duration is bounded by connect+total timeouts from config.
func newHTTPClient(connectTimeout, totalTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: connectTimeout,
		Control: security.DialControl,
	}
	return &http.Client{
		Timeout: totalTimeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: connectTimeout,
		},
	}
}

// downloadWithRetry performs an HTTPS GET with a bounded total size and
// exponential backoff on transient failures (connect errors, 5xx). 4xx
// responses are not retried, matching spec.md §4.7.
func downloadWithRetry(ctx context.Context, client *http.Client, url string, maxBytes int64, maxRetries int) ([]byte, error) {
	logger := logging.Get(logging.CategoryInstall)
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			case <-ctx.Done():
				return nil, rerr.Cancelled("download").Wrap(ctx.Err())
			}
		}

		data, retryable, err := attemptDownload(ctx, client, url, maxBytes)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		logger.Warn("download attempt %d/%d failed for %s: %v", attempt+1, maxRetries+1, url, err)
	}

	return nil, rerr.Network("download", "exhausted retries for %s: %v", url, lastErr)
}

func attemptDownload(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, rerr.Network("request", "%v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, true, rerr.Network("connect", "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, rerr.Network("http", "server error %d for %s", resp.StatusCode, url)
	}
	if resp.StatusCode >= 400 {
		return nil, false, rerr.Network("http", "client error %d for %s", resp.StatusCode, url)
	}

	limited := io.LimitReader(resp.Body, maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, true, rerr.Network("read", "%v", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, false, fmt.Errorf("%w", rerr.TooLarge(url, int64(len(data)), maxBytes))
	}
	return data, false, nil
}
