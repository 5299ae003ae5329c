// Package httpapi is Anchor's main HTTP surface: auth, repository, profile,
// and 2FA endpoints, wired together from internal/authtoken,
// internal/rbac, internal/snapshot, internal/userstore, and
// internal/ratelimit behind a chi router.
package httpapi

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/anchorvcs/anchor/internal/authtoken"
	"github.com/anchorvcs/anchor/internal/metrics"
	"github.com/anchorvcs/anchor/internal/objectstore"
	"github.com/anchorvcs/anchor/internal/ratelimit"
	"github.com/anchorvcs/anchor/internal/rbac"
	"github.com/anchorvcs/anchor/internal/sshauth"
	"github.com/anchorvcs/anchor/internal/userstore"
)

// repoPath resolves a repository name to its directory under root.
func repoPath(root, name string) string {
	return filepath.Join(root, name)
}

// Server holds every dependency the HTTP handlers need. It carries no
// per-request state; handlers are methods closing over it.
type Server struct {
	ReposRoot     string
	AdminUsername string

	AccessTokens  *authtoken.Manager
	RefreshTokens *authtoken.Manager
	RBAC          *rbac.Manager
	Users         *userstore.Store
	Objects       *objectstore.Store
	Limiter       *ratelimit.Limiter
	Challenges    *sshauth.ChallengeStore

	// Metrics is optional; when nil, requests simply aren't instrumented.
	Metrics *metrics.Metrics
}

// metricsMiddleware records request count and latency against s.Metrics,
// keyed by the matched chi route pattern rather than the raw path so
// path parameters (repo names, snapshot ids) don't blow up label
// cardinality.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		s.Metrics.ObserveRequest(route, r.Method, strconv.Itoa(ww.Status()), time.Since(start).Seconds())
	})
}

// NewRouter builds the full route tree around s.
func NewRouter(s *Server) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(s.metricsMiddleware)
	r.Use(s.rateLimitMiddleware)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/login/2fa", s.handleLogin2FA)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/ssh-challenge", s.handleSSHChallenge)
		r.Post("/ssh-login", s.handleSSHLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/step-up", s.handleStepUp)
			r.Post("/logout", s.handleLogout)
		})
	})

	r.Route("/repos", func(r chi.Router) {
		r.Use(s.optionalAuth)
		r.With(s.requireAuth).Get("/", s.handleListRepos)
		r.With(s.requireAuth, s.requireStepUp, s.requirePermission(rbac.PermissionCreateRepo)).Post("/", s.handleCreateRepo)

		r.Route("/{name}", func(r chi.Router) {
			// requireRepoAccess decides per-request whether the repo's
			// visibility permits this caller through, authenticated or not.
			r.Use(s.requireRepoAccess)
			r.Get("/", s.handleGetRepo)
			r.Get("/history", s.handleHistory)
			r.Get("/diff", s.handleDiff)
			r.Get("/stats", s.handleStats)
			r.Get("/tree/{snapshotID}", s.handleTree)
			r.Get("/file/{snapshotID}/*", s.handleFile)
			r.Get("/archive", s.handleArchive)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth, s.requirePermission(rbac.PermissionWriteRepo))
				r.Patch("/favorite", s.handleFavorite)
				r.Patch("/visibility", s.handleVisibility)
				r.Post("/save", s.handleSave)
				r.Post("/upload", s.handleUpload)
			})
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.With(s.requirePermission(rbac.PermissionReadProfile)).Get("/profile", s.handleGetProfile)
		r.With(s.requirePermission(rbac.PermissionWriteProfile)).Patch("/profile", s.handleUpdateProfile)

		r.With(s.requirePermission(rbac.PermissionManageKeys)).Get("/keys", s.handleGetKeys)
		r.With(s.requireStepUp, s.requirePermission(rbac.PermissionManageKeys)).Post("/keys", s.handleAddKey)
		r.With(s.requireStepUp, s.requirePermission(rbac.PermissionManageKeys)).Delete("/keys/{keyID}", s.handleDeleteKey)

		r.Route("/2fa", func(r chi.Router) {
			r.With(s.requirePermission(rbac.PermissionWriteProfile)).Post("/setup", s.handleSetup2FA)
			r.With(s.requirePermission(rbac.PermissionWriteProfile)).Post("/enable", s.handleEnable2FA)
			r.With(s.requireStepUp, s.requirePermission(rbac.PermissionWriteProfile)).Post("/disable", s.handleDisable2FA)
			r.Get("/status", s.handleStatus2FA)
		})
	})

	return r
}
