package client

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/objectstore"
	"github.com/anchorvcs/anchor/internal/snapshot"
)

// remoteClient talks to a single remote repository, addressed by its full
// /repos/{name} URL (e.g. "https://anchor.example.com/repos/demo").
type remoteClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newRemoteClient(baseURL, token string) *remoteClient {
	return &remoteClient{baseURL: baseURL, token: token, http: &http.Client{Timeout: 2 * time.Minute}}
}

func (c *remoteClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *remoteClient) do(req *http.Request) (*http.Response, error) {
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "remote request")
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, apperr.Wrap(fmt.Errorf("%s", string(body)), remoteStatusCode(resp.StatusCode), "remote returned "+resp.Status)
	}
	return resp, nil
}

func remoteStatusCode(status int) apperr.Code {
	switch status {
	case http.StatusNotFound:
		return apperr.CodeNotFound
	case http.StatusUnauthorized:
		return apperr.CodeUnauthenticated
	case http.StatusForbidden:
		return apperr.CodeForbidden
	case http.StatusConflict:
		return apperr.CodeConflict
	default:
		return apperr.CodeInternal
	}
}

// fetchArchive downloads the remote's current archive and returns the zip
// bytes.
func (c *remoteClient) fetchArchive(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/archive?ref=main", nil)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "build archive request")
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "read archive")
	}
	return data, nil
}

// fetchHistory downloads the remote's ordered snapshot list.
func (c *remoteClient) fetchHistory(ctx context.Context) ([]objectstore.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history", nil)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "build history request")
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var history []objectstore.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "decode history")
	}
	return history, nil
}

type uploadResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// uploadZip posts a zip archive plus a commit message to the remote's
// upload endpoint, mirroring the server's multipart upload handler.
func (c *remoteClient) uploadZip(ctx context.Context, zipPath, message string) (string, error) {
	f, err := os.Open(zipPath)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "open archive for upload")
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("message", message); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "encode upload")
	}
	part, err := w.CreateFormFile("file", "snapshot.zip")
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "encode upload")
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "encode upload")
	}
	if err := w.Close(); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "encode upload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "build upload request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "decode upload response")
	}
	return out.SnapshotID, nil
}

func (r *Repo) remote(name string) (*remoteClient, error) {
	url, ok := r.Config.Remote(name)
	if !ok {
		return nil, apperr.NotFound("no remote named " + name)
	}
	token, _ := r.Config.Get("auth.token")
	return newRemoteClient(url, token), nil
}

// Clone fetches remoteURL's archive, extracts it into dest, initializes a
// fresh replica there, seeds the index from the extracted tree, records
// remoteURL under "origin", and fetches remote history into the local
// snapshot store.
func Clone(ctx context.Context, remoteURL, dest, token string) (*Repo, error) {
	client := newRemoteClient(remoteURL, token)
	zipData, err := client.fetchArchive(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "create destination directory")
	}

	tmpZip, err := os.CreateTemp("", "anchor-clone-*.zip")
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "buffer clone archive")
	}
	tmpZipPath := tmpZip.Name()
	defer os.Remove(tmpZipPath)
	if _, err := tmpZip.Write(zipData); err != nil {
		tmpZip.Close()
		return nil, apperr.Wrap(err, apperr.CodeInternal, "buffer clone archive")
	}
	tmpZip.Close()

	if err := snapshot.ExtractZip(tmpZipPath, dest); err != nil {
		return nil, err
	}

	repo, err := Init(dest)
	if err != nil {
		return nil, err
	}
	repo.Config.SetRemote("origin", remoteURL)
	if token != "" {
		repo.Config.Set("auth.token", token)
	}
	if err := repo.Config.Save(repo.AnchorDir); err != nil {
		return nil, err
	}

	tree, err := snapshot.BuildTree(ctx, repo.Snapshot.Store, dest)
	if err != nil {
		return nil, err
	}
	idx := Index{}
	for path, entry := range tree.Entries {
		idx[path] = entry.ID
	}
	if err := writeIndex(repo.AnchorDir, idx); err != nil {
		return nil, err
	}

	history, err := client.fetchHistory(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		for _, snap := range history {
			if err := repo.Snapshot.Store.PutSnapshot(ctx, snap); err != nil {
				return nil, err
			}
		}
		head := history[0].SnapshotID
		if err := repo.Snapshot.WriteRef("heads/main", head); err != nil {
			return nil, err
		}
		if err := repo.Snapshot.WriteRef("remotes/origin/main", head); err != nil {
			return nil, err
		}
	}
	if err := repo.SetHEADBranch("heads/main"); err != nil {
		return nil, err
	}
	if err := repo.AppendReflog("", "", "clone", remoteURL); err != nil {
		return nil, err
	}
	return repo, nil
}

// Push zips the working tree (excluding .anchor and .git) and uploads it
// to remoteName with message, returning the snapshot id the remote
// assigned. Because the client computes snapshot ids with the same
// formula as the server, a subsequent fetch will recognize this as
// already-known history rather than a foreign commit.
func (r *Repo) Push(ctx context.Context, remoteName, message string) (string, error) {
	client, err := r.remote(remoteName)
	if err != nil {
		return "", err
	}

	zipPath, err := r.zipWorkingTree()
	if err != nil {
		return "", err
	}
	defer os.Remove(zipPath)

	return client.uploadZip(ctx, zipPath, message)
}

// Pull fetches remoteName's archive and extracts it over the working
// tree, overwriting any local files the archive also contains.
func (r *Repo) Pull(ctx context.Context, remoteName string) error {
	client, err := r.remote(remoteName)
	if err != nil {
		return err
	}
	zipData, err := client.fetchArchive(ctx)
	if err != nil {
		return err
	}

	tmpZip, err := os.CreateTemp("", "anchor-pull-*.zip")
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "buffer pull archive")
	}
	tmpZipPath := tmpZip.Name()
	defer os.Remove(tmpZipPath)
	if _, err := tmpZip.Write(zipData); err != nil {
		tmpZip.Close()
		return apperr.Wrap(err, apperr.CodeInternal, "buffer pull archive")
	}
	tmpZip.Close()

	return snapshot.ExtractZip(tmpZipPath, r.WorkDir)
}

// Fetch downloads remoteName's history listing, persists any snapshot
// objects not already present locally, advances refs/remotes/<name>/main,
// and appends a reflog entry. It does not touch the working tree, the
// index, or the local branch.
func (r *Repo) Fetch(ctx context.Context, remoteName string) error {
	client, err := r.remote(remoteName)
	if err != nil {
		return err
	}
	history, err := client.fetchHistory(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	before, _ := r.Snapshot.ReadRef("remotes/" + remoteName + "/main")

	for _, snap := range history {
		if _, err := r.Snapshot.Store.GetSnapshot(ctx, snap.SnapshotID); err == nil {
			continue
		}
		if err := r.Snapshot.Store.PutSnapshot(ctx, snap); err != nil {
			return err
		}
	}

	head := history[0].SnapshotID
	if err := r.Snapshot.WriteRef("remotes/"+remoteName+"/main", head); err != nil {
		return err
	}
	return r.AppendReflog(before, head, "fetch", remoteName)
}

func (r *Repo) zipWorkingTree() (string, error) {
	out, err := os.CreateTemp("", "anchor-push-*.zip")
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "create push archive")
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	err = filepath.WalkDir(r.WorkDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == DirName || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(r.WorkDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		zw.Close()
		os.Remove(out.Name())
		return "", apperr.Wrap(err, apperr.CodeInternal, "zip working tree")
	}
	if err := zw.Close(); err != nil {
		os.Remove(out.Name())
		return "", apperr.Wrap(err, apperr.CodeInternal, "finalize push archive")
	}
	return out.Name(), nil
}
