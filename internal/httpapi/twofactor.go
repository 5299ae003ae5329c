package httpapi

import (
	"net/http"

	"github.com/anchorvcs/anchor/internal/apperr"
)

type enable2FARequest struct {
	Code string `json:"code"`
}

func (s *Server) handleSetup2FA(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	current, err := s.Users.GetTwoFactor(claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if current.Enabled {
		writeError(w, r, apperr.Invalid("two-factor authentication is already enabled"))
		return
	}

	setup, err := s.Users.GenerateTwoFactorSetup(claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

func (s *Server) handleEnable2FA(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req enable2FARequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.Users.ConfirmTwoFactor(claims.Subject, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "two-factor authentication enabled"})
}

func (s *Server) handleDisable2FA(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if err := s.Users.DisableTwoFactor(claims.Subject); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "two-factor authentication disabled"})
}

func (s *Server) handleStatus2FA(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	tf, err := s.Users.GetTwoFactor(claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": tf.Enabled})
}
