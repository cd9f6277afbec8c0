// Package downloader fetches dataset bundles over HTTP.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Download stores the body of url at out. The file is written under a
// temporary name and renamed once complete, so a failed download never
// leaves a truncated bundle behind.
func Download(ctx context.Context, url, out string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("downloader: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloader: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("downloader: http error: %s", resp.Status)
	}
	tmp := out + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("downloader: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("downloader: %s: %w", url, err)
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("downloader: %w", err)
	}
	return n, nil
}
