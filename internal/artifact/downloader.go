package artifact

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Fetcher is the slice of the artifact store the downloader needs.
type Fetcher interface {
	DownloadArtifact(ctx context.Context, id int64, w io.Writer) error
}

// Downloader fetches artifact bundles, unpacks them in a private staging
// directory and relocates the contained log file to logs/<name>.
type Downloader struct {
	fetcher    Fetcher
	logsDir    string
	stagingDir string
}

// NewDownloader creates a Downloader that places extracted logs under logsDir.
func NewDownloader(f Fetcher, logsDir string) *Downloader {
	return &Downloader{
		fetcher:    f,
		logsDir:    logsDir,
		stagingDir: filepath.Join(logsDir, ".staging"),
	}
}

// Download fetches the zip bundle for the given artifact ID, extracts it and
// moves the contained file named name to logs/<name>, overwriting any
// previous copy. It returns the final path. A network failure, a bad status
// or a bundle missing the expected file all fail the download; callers decide
// whether that aborts the run.
func (d *Downloader) Download(ctx context.Context, name string, id int64) (string, error) {
	if err := os.MkdirAll(d.logsDir, 0755); err != nil {
		return "", fmt.Errorf("create logs directory: %w", err)
	}

	// Unique staging dir per download so retries and parallel runs on the
	// same checkout cannot collide.
	stage := filepath.Join(d.stagingDir, fmt.Sprintf("%s-%s", name, uuid.NewString()))
	if err := os.MkdirAll(stage, 0755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	zipPath := filepath.Join(stage, "bundle.zip")
	if err := d.fetchBundle(ctx, id, zipPath); err != nil {
		return "", err
	}

	if err := extractZip(zipPath, stage); err != nil {
		return "", fmt.Errorf("extract artifact %s: %w", name, err)
	}

	src := filepath.Join(stage, name)
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("artifact bundle %d does not contain %s: %w", id, name, err)
	}

	dst := filepath.Join(d.logsDir, name)
	os.Remove(dst)
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("move %s into logs directory: %w", name, err)
	}
	return dst, nil
}

// fetchBundle streams the artifact content to path.
func (d *Downloader) fetchBundle(ctx context.Context, id int64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle file: %w", err)
	}
	if err := d.fetcher.DownloadArtifact(ctx, id, f); err != nil {
		f.Close()
		return fmt.Errorf("fetch artifact %d: %w", id, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close bundle file: %w", err)
	}
	return nil
}

// extractZip unpacks the archive at path into dir, refusing entries that
// would escape dir.
func extractZip(path, dir string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	root := filepath.Clean(dir) + string(os.PathSeparator)
	for _, entry := range reader.File {
		target := filepath.Join(dir, entry.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("archive entry %q escapes extraction directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", entry.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("create parent of %s: %w", entry.Name, err)
		}
		if err := extractFile(entry, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
