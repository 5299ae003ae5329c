package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/snapshot"
)

type createRepoRequest struct {
	Name string `json:"name"`
}

type snapshotRequest struct {
	Message string `json:"message"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

type repoStatsResponse struct {
	SnapshotCount int `json:"snapshot_count"`
	FileCount     int `json:"file_count"`
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.ReposRoot)
	if err != nil && !os.IsNotExist(err) {
		writeError(w, r, apperr.Wrap(err, apperr.CodeInternal, "list repositories"))
		return
	}

	metas := []snapshot.Meta{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		repo := snapshot.Open(repoPath(s.ReposRoot, entry.Name()), s.Objects)
		meta, err := repo.ReadMeta()
		if apperr.Is(err, apperr.CodeNotFound) {
			metas = append(metas, snapshot.Meta{Name: entry.Name()})
			continue
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		metas = append(metas, meta)
	}
	if s.Metrics != nil {
		s.Metrics.SetRepoCount(len(metas))
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleCreateRepo(w http.ResponseWriter, r *http.Request) {
	var req createRepoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == "" {
		writeError(w, r, apperr.Invalid("repository name is required"))
		return
	}

	if _, err := snapshot.InitRepo(s.ReposRoot, req.Name, s.Objects); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": fmt.Sprintf("repository %q created", req.Name),
		"path":    repoPath(s.ReposRoot, req.Name),
	})
}

func (s *Server) handleGetRepo(w http.ResponseWriter, r *http.Request) {
	meta, err := repoFrom(r).ReadMeta()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := repoFrom(r).GetHistory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, r, apperr.Invalid("both from and to query parameters are required"))
		return
	}

	diff, err := repoFrom(r).GetDiff(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	repo := repoFrom(r)
	history, err := repo.GetHistory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats := repoStatsResponse{SnapshotCount: len(history)}
	if len(history) > 0 {
		tree, err := s.Objects.GetTree(r.Context(), history[0].RootTree)
		if err != nil {
			writeError(w, r, err)
			return
		}
		stats.FileCount = len(tree.Entries)
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "snapshotID")
	snap, err := s.Objects.GetSnapshot(r.Context(), snapshotID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tree, err := s.Objects.GetTree(r.Context(), snap.RootTree)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "snapshotID")
	filePath := chi.URLParam(r, "*")

	snap, err := s.Objects.GetSnapshot(r.Context(), snapshotID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tree, err := s.Objects.GetTree(r.Context(), snap.RootTree)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, ok := tree.Entries[filePath]
	if !ok {
		writeError(w, r, apperr.NotFound("file not found in snapshot"))
		return
	}
	data, err := s.Objects.GetBlob(r.Context(), entry.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	repo := repoFrom(r)

	ref := r.URL.Query().Get("ref")
	if ref == "" {
		ref = "main"
	}

	snapshotID := ref
	if ref == "main" {
		head, err := repo.ReadRef("main")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if head == "" {
			writeError(w, r, apperr.NotFound("repository is empty"))
			return
		}
		snapshotID = head
	}

	zipPath, err := repo.CreateArchive(r.Context(), snapshotID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer os.Remove(zipPath)

	f, err := os.Open(zipPath)
	if err != nil {
		writeError(w, r, apperr.Wrap(err, apperr.CodeInternal, "open archive"))
		return
	}
	defer f.Close()

	name := chi.URLParam(r, "name")
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.zip", name, snapshotID))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	workDir, err := os.MkdirTemp("", "anchor-save-*")
	if err != nil {
		writeError(w, r, apperr.Wrap(err, apperr.CodeInternal, "create scratch directory"))
		return
	}
	defer os.RemoveAll(workDir)

	snapshotID, err := repoFrom(r).SaveSnapshot(r.Context(), req.Message, workDir)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.RecordSnapshotSaved(dirSize(workDir))
	}
	writeJSON(w, http.StatusOK, snapshotResponse{SnapshotID: snapshotID})
}

// dirSize sums the apparent size of every regular file under dir. Used
// only to feed the snapshot-size metric; a walk error just truncates the
// total rather than failing the request that already succeeded.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

const maxUploadSize = 256 << 20 // 256 MiB

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, apperr.Wrap(err, apperr.CodeInvalid, "parse multipart upload"))
		return
	}

	message := r.FormValue("message")
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperr.Invalid("file field is required"))
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "anchor-upload-*.zip")
	if err != nil {
		writeError(w, r, apperr.Wrap(err, apperr.CodeInternal, "create scratch file"))
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	written, err := io.Copy(tmp, file)
	if err != nil {
		tmp.Close()
		writeError(w, r, apperr.Wrap(err, apperr.CodeInternal, "buffer uploaded archive"))
		return
	}
	tmp.Close()

	snapshotID, err := repoFrom(r).UnzipAndSaveSnapshot(r.Context(), message, tmpPath)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.RecordSnapshotSaved(written)
	}
	writeJSON(w, http.StatusOK, snapshotResponse{SnapshotID: snapshotID})
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	isFavorite := false
	if raw := r.URL.Query().Get("is_favorite"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, apperr.Invalid("is_favorite query parameter must be a boolean"))
			return
		}
		isFavorite = parsed
	}

	repo := repoFrom(r)
	if err := repo.SetFavorite(isFavorite); err != nil {
		writeError(w, r, err)
		return
	}

	message := "repository removed from favorites"
	if isFavorite {
		message = "repository marked as favorite"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"repository":  chi.URLParam(r, "name"),
		"is_favorite": isFavorite,
		"message":     message,
	})
}

type visibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

// handleVisibility toggles whether anonymous, unauthenticated requests
// can read this repository. Only a caller who already holds write:repo
// may flip it, the same gate handleSave/handleUpload use.
func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	repo := repoFrom(r)
	if err := repo.SetVisibility(req.IsPublic); err != nil {
		writeError(w, r, err)
		return
	}

	message := "repository is now private"
	if req.IsPublic {
		message = "repository is now public"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"repository": chi.URLParam(r, "name"),
		"is_public":  req.IsPublic,
		"message":    message,
	})
}
