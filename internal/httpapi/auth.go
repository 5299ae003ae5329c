package httpapi

import (
	"encoding/base64"
	"net/http"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/authtoken"
	"github.com/anchorvcs/anchor/internal/fingerprint"
	"github.com/anchorvcs/anchor/internal/sshauth"
	"github.com/anchorvcs/anchor/internal/userstore"
)

// decodeSignature accepts a base64-encoded signature, trying standard
// padded encoding first and falling back to URL-safe unpadded encoding.
func decodeSignature(encoded string) ([]byte, error) {
	if sig, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return sig, nil
	}
	sig, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInvalid, "malformed signature encoding")
	}
	return sig, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type login2FARequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type sshLoginRequest struct {
	Username  string `json:"username"`
	Signature string `json:"signature"`
	KeyID     string `json:"key_id"`
}

type stepUpRequest struct {
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type twoFactorRequiredResponse struct {
	Status   string `json:"status"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

const refreshCookieName = "refresh_token"

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(authtoken.RefreshTokenTTL.Seconds()),
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// issueSession mints a fresh access/refresh token pair for username,
// setting the refresh cookie and returning the access token response.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, username string, stepUp bool) (tokenResponse, error) {
	fp := fingerprint.Generate(r)

	access, err := s.AccessTokens.Issue(username, fp, stepUp)
	if err != nil {
		return tokenResponse{}, err
	}

	refresh, err := s.RefreshTokens.Issue(r.Context(), username, fp)
	if err != nil {
		return tokenResponse{}, err
	}
	s.setRefreshCookie(w, refresh)

	return tokenResponse{AccessToken: access, TokenType: "bearer"}, nil
}

func (s *Server) isAdminPassword(username, password string) bool {
	if username != s.AdminUsername {
		return false
	}
	hash, err := s.Users.GetPasswordHash(username)
	if err != nil || hash == "" {
		return false
	}
	return userstore.VerifyPassword(password, hash)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if !s.isAdminPassword(req.Username, req.Password) {
		writeError(w, r, apperr.Unauthenticated("invalid username or password"))
		return
	}

	twoFA, err := s.Users.GetTwoFactor(req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if twoFA.Enabled {
		writeJSON(w, http.StatusOK, twoFactorRequiredResponse{
			Status:   "2fa_required",
			Username: req.Username,
			Message:  "two-factor authentication required",
		})
		return
	}

	resp, err := s.issueSession(w, r, req.Username, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogin2FA(w http.ResponseWriter, r *http.Request) {
	var req login2FARequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Username != s.AdminUsername {
		writeError(w, r, apperr.Unauthenticated("invalid user"))
		return
	}

	ok, err := s.Users.VerifyTwoFactorCode(req.Username, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.Unauthenticated("invalid two-factor code"))
		return
	}

	resp, err := s.issueSession(w, r, req.Username, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, r, apperr.Unauthenticated("refresh token missing"))
		return
	}

	fp := fingerprint.Generate(r)
	result, err := s.RefreshTokens.ValidateAndRotate(r.Context(), cookie.Value, fp)
	if err != nil {
		s.clearRefreshCookie(w)
		writeError(w, r, err)
		return
	}

	access, err := s.AccessTokens.Issue(result.Username, fp, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.setRefreshCookie(w, result.NewToken)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, TokenType: "bearer"})
}

func (s *Server) handleSSHChallenge(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username != s.AdminUsername {
		writeError(w, r, apperr.NotFound("user not found"))
		return
	}

	challenge, err := s.Challenges.Issue(username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"challenge": challenge})
}

func (s *Server) handleSSHLogin(w http.ResponseWriter, r *http.Request) {
	var req sshLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	challenge, ok := s.Challenges.Consume(req.Username)
	if !ok {
		writeError(w, r, apperr.Invalid("no challenge pending for this user"))
		return
	}

	keys, err := s.Users.GetKeys(req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var keyLine string
	for _, k := range keys {
		if k.ID == req.KeyID {
			keyLine = k.Key
			break
		}
	}
	if keyLine == "" {
		writeError(w, r, apperr.NotFound("SSH key not found"))
		return
	}

	sig, err := decodeSignature(req.Signature)
	if err != nil {
		writeError(w, r, err)
		return
	}

	verified, err := sshauth.VerifySignature(keyLine, []byte(challenge), sig)
	if err != nil || !verified {
		writeError(w, r, apperr.Unauthenticated("invalid signature"))
		return
	}

	resp, err := s.issueSession(w, r, req.Username, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStepUp(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var req stepUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if !s.isAdminPassword(claims.Subject, req.Password) {
		writeError(w, r, apperr.Unauthenticated("invalid password"))
		return
	}

	twoFA, err := s.Users.GetTwoFactor(claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if twoFA.Enabled {
		if req.Code == "" {
			writeError(w, r, apperr.Invalid("two-factor code required"))
			return
		}
		ok, err := s.Users.VerifyTwoFactorCode(claims.Subject, req.Code)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !ok {
			writeError(w, r, apperr.Unauthenticated("invalid two-factor code"))
			return
		}
	}

	fp := fingerprint.Generate(r)
	access, err := s.AccessTokens.Issue(claims.Subject, fp, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, TokenType: "bearer"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		s.RefreshTokens.Revoke(r.Context(), cookie.Value)
	}
	s.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "user " + claims.Subject + " logged out"})
}
