package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rainmen-xia/rod-cli-sub001/internal/github"
)

// DownloadTemplate fetches the asset's bytes into downloadDir and returns
// the local file path. The file only appears under its final name once the
// byte count matches the size the release declared; a short or long
// transfer is a DownloadError, never a silently accepted file.
func DownloadTemplate(ctx context.Context, client *github.Client, asset *github.Asset, downloadDir string, onProgress github.ProgressFunc) (string, error) {
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return "", &github.DownloadError{URL: asset.DownloadURL, Err: err}
	}

	dest := filepath.Join(downloadDir, asset.Name)
	if err := client.DownloadFile(ctx, asset.DownloadURL, dest, onProgress); err != nil {
		return "", err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return "", &github.DownloadError{URL: asset.DownloadURL, Err: err}
	}
	if asset.Size > 0 && info.Size() != asset.Size {
		os.Remove(dest)
		return "", &github.DownloadError{
			URL: asset.DownloadURL,
			Err: fmt.Errorf("size mismatch: expected %d bytes, got %d", asset.Size, info.Size()),
		}
	}

	return dest, nil
}
