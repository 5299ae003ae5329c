package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/userstore"
)

// profileUpdateRequest mirrors userstore.Profile's editable fields plus
// the two sensitive operations (rename, password change) that require a
// fresh step-up token in addition to an ordinary write:profile grant.
type profileUpdateRequest struct {
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Username    string `json:"username,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
}

func (req profileUpdateRequest) touchesSensitiveFields() bool {
	return req.Username != "" || req.NewPassword != ""
}

type addKeyRequest struct {
	Title string `json:"title"`
	Key   string `json:"key"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	profile, err := s.Users.GetProfile(claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	username := claims.Subject
	if req.touchesSensitiveFields() {
		if !claims.IsStepUpFresh(time.Now()) {
			writeError(w, r, apperr.Forbidden("renaming your account or changing your password requires a recent step-up verification"))
			return
		}

		if req.Username != "" && req.Username != username {
			if err := s.Users.RenameUser(username, req.Username); err != nil {
				writeError(w, r, err)
				return
			}
			username = req.Username
		}

		if req.NewPassword != "" {
			hash, err := userstore.HashPassword(req.NewPassword)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if err := s.Users.SetPasswordHash(username, hash); err != nil {
				writeError(w, r, err)
				return
			}
		}
	}

	updated, err := s.Users.UpdateProfile(username, userstore.Profile{
		Bio:       req.Bio,
		Location:  req.Location,
		Website:   req.Website,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleGetKeys(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	keys, err := s.Users.GetKeys(claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) handleAddKey(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var req addKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	keys, err := s.Users.AddKey(claims.Subject, req.Title, req.Key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	keyID := chi.URLParam(r, "keyID")

	keys, err := s.Users.DeleteKey(claims.Subject, keyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}
