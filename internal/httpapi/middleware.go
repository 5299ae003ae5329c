package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/authtoken"
	"github.com/anchorvcs/anchor/internal/fingerprint"
	"github.com/anchorvcs/anchor/internal/rbac"
	"github.com/anchorvcs/anchor/internal/snapshot"
)

type contextKey int

const (
	claimsKey contextKey = iota
	repoKey
)

func claimsFrom(r *http.Request) *authtoken.Claims {
	claims, _ := r.Context().Value(claimsKey).(*authtoken.Claims)
	return claims
}

func repoFrom(r *http.Request) *snapshot.Repo {
	repo, _ := r.Context().Value(repoKey).(*snapshot.Repo)
	return repo
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or "" if the header is absent or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// rateLimitMiddleware rejects requests over the per-IP budget before they
// reach any handler, including unauthenticated login attempts.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Limiter.Check(r); err != nil {
			if s.Metrics != nil {
				s.Metrics.RecordRateLimited()
			}
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth verifies the bearer access token and stashes its claims.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, r, apperr.Unauthenticated("missing bearer token"))
			return
		}

		claims, err := s.AccessTokens.Verify(token, fingerprint.Generate(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth stashes claims when a bearer token is present and valid,
// but lets the request through unauthenticated when none is supplied at
// all. A token that is supplied but invalid is still rejected outright —
// "anonymous" means no credential was offered, not that one was ignored.
// This is what lets requireRepoAccess allow anonymous reads of public
// repositories further down the chain.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.AccessTokens.Verify(token, fingerprint.Generate(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireStepUp rejects requests whose access token's step-up bit isn't
// both set and still fresh; sensitive operations (key changes, password
// changes, disabling 2FA) gate on this in addition to requireAuth.
func (s *Server) requireStepUp(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		if claims == nil || !claims.IsStepUpFresh(time.Now()) {
			writeError(w, r, apperr.Forbidden("this action requires a recent step-up verification"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requirePermission returns a middleware enforcing that the authenticated
// subject carries permission under Anchor's role model.
func (s *Server) requirePermission(permission rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r)
			if claims == nil {
				writeError(w, r, apperr.Unauthenticated("authentication required"))
				return
			}
			if err := s.RBAC.RequirePermission(claims.Subject, permission, nil); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireRepoAccess resolves the {name} URL parameter to an on-disk repo,
// rejecting path traversal and unknown repositories before any handler
// sees the request. A public repository (meta.json's is_public flag, set
// via handleVisibility, which requires requireAuth and write:repo) accepts anonymous reads;
// a private one requires an authenticated identity carrying read:repo.
// Must run behind optionalAuth, not requireAuth, so anonymous requests
// reach here with a nil claims rather than being rejected upstream.
func (s *Server) requireRepoAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
			writeError(w, r, apperr.Invalid("invalid repository name"))
			return
		}

		repo := snapshot.Open(repoPath(s.ReposRoot, name), s.Objects)
		meta, err := repo.ReadMeta()
		if err != nil {
			writeError(w, r, err)
			return
		}

		claims := claimsFrom(r)
		if !meta.IsPublic {
			if claims == nil {
				writeError(w, r, apperr.Unauthenticated("authentication required"))
				return
			}
			if err := s.RBAC.RequirePermission(claims.Subject, rbac.PermissionReadRepo, nil); err != nil {
				writeError(w, r, err)
				return
			}
		} else if claims != nil {
			// An authenticated caller still needs to actually hold
			// read:repo — a guest-role token shouldn't somehow grant
			// more than an anonymous visitor would get.
			if err := s.RBAC.RequirePermission(claims.Subject, rbac.PermissionReadRepo, nil); err != nil {
				writeError(w, r, err)
				return
			}
		}

		ctx := context.WithValue(r.Context(), repoKey, repo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
