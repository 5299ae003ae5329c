package snapshot

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/logger"
)

// CreateArchive materializes a snapshot's tree as a zip file on disk and
// returns its path. The caller owns cleanup of the returned file.
func (r *Repo) CreateArchive(ctx context.Context, snapshotID string) (string, error) {
	snap, err := r.Store.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return "", err
	}
	tree, err := r.Store.GetTree(ctx, snap.RootTree)
	if err != nil {
		return "", err
	}

	out, err := os.CreateTemp("", "anchor-archive-*.zip")
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "create archive file")
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for path, entry := range tree.Entries {
		data, err := r.Store.GetBlob(ctx, entry.ID)
		if err != nil {
			zw.Close()
			os.Remove(out.Name())
			return "", err
		}
		w, err := zw.Create(path)
		if err != nil {
			zw.Close()
			os.Remove(out.Name())
			return "", apperr.Wrap(err, apperr.CodeInternal, "add archive entry")
		}
		if _, err := w.Write(data); err != nil {
			zw.Close()
			os.Remove(out.Name())
			return "", apperr.Wrap(err, apperr.CodeInternal, "write archive entry")
		}
	}
	if err := zw.Close(); err != nil {
		os.Remove(out.Name())
		return "", apperr.Wrap(err, apperr.CodeInternal, "finalize archive")
	}

	logger.Info("created archive for snapshot %s at %s", snapshotID, out.Name())
	return out.Name(), nil
}

// UnzipAndSaveSnapshot extracts zipPath into a scratch working directory
// and calls SaveSnapshot against it, guaranteeing the scratch directory is
// removed on every exit path.
func (r *Repo) UnzipAndSaveSnapshot(ctx context.Context, message, zipPath string) (string, error) {
	workDir, err := os.MkdirTemp("", "anchor-unzip-*")
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "create scratch directory")
	}
	defer os.RemoveAll(workDir)

	if err := ExtractZip(zipPath, workDir); err != nil {
		return "", err
	}

	return r.SaveSnapshot(ctx, message, workDir)
}

// ExtractZip unpacks zipPath into destDir, guarding against zip-slip.
// Exported so the client replica's clone/pull can extract a downloaded
// archive over a working directory using the same guard the server's
// upload path uses.
func ExtractZip(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInvalid, "open archive")
	}
	defer zr.Close()

	for _, f := range zr.File {
		destPath := filepath.Join(destDir, f.Name)
		// Guard against zip-slip: every extracted path must stay under destDir.
		if !isWithinDir(destDir, destPath) {
			return apperr.Invalid("archive entry escapes extraction directory").WithDetails("entry", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return apperr.Wrap(err, apperr.CodeInternal, "create archive directory")
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return apperr.Wrap(err, apperr.CodeInternal, "create archive parent directory")
		}

		if err := extractFile(f, destPath); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInvalid, "open archive entry")
	}
	defer rc.Close()

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "create extracted file")
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write extracted file")
	}
	return nil
}

func isWithinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	sep := string(filepath.Separator)
	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+sep)
}
