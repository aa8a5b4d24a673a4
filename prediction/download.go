package prediction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// downloadFile fetches the model artifact to destPath, reporting percentage
// progress. It streams into a temp file and renames on success so a partial
// download never masquerades as a complete artifact.
func downloadFile(ctx context.Context, client *http.Client, info ModelInfo, destPath string, progress func(percent int)) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	// HuggingFace gates some repos behind a token.
	if token := os.Getenv("HF_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status: %d", resp.StatusCode)
	}

	expectedSize := info.Size
	if resp.ContentLength > 0 {
		expectedSize = resp.ContentLength
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // no-op after successful rename
	}()

	hash := sha256.New()
	buf := make([]byte, 32*1024)
	var downloaded int64
	lastProgress := 0

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write file: %w", werr)
			}
			hash.Write(buf[:n])
			downloaded += int64(n)

			if expectedSize > 0 && progress != nil {
				pct := int(downloaded * 100 / expectedSize)
				if pct > 100 {
					pct = 100
				}
				if pct > lastProgress {
					lastProgress = pct
					progress(pct)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read response: %w", readErr)
		}
	}

	if info.SHA256 != "" {
		sum := hex.EncodeToString(hash.Sum(nil))
		if sum != info.SHA256 {
			return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, sum, info.SHA256)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
