package handler

import (
	"log/slog"
	"net/http"

	"github.com/rosterdesk/platform/internal/auth"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/guard"
	"github.com/rosterdesk/platform/internal/tenant"
)

// ResolveTenant resolves the caller's organization for each request and
// stores the scope and its resolver on the request context. It must run
// after auth.Authenticate.
func ResolveTenant(lookup tenant.MembershipLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolver := tenant.NewResolver(auth.ContextSession{}, lookup, logger)
			scope, err := resolver.Resolve(r.Context())
			if err != nil {
				RespondError(w, tenantError(err))
				return
			}
			annotateTenant(r.Context(), scope.OrgID, scope.UserID, string(scope.Role))
			ctx := tenant.WithResolver(tenant.WithScope(r.Context(), scope), resolver)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tenantError(err error) error {
	switch {
	case domain.HasCode(err, domain.CodeUnauthorized):
		return err
	case domain.IsNotFound(err):
		return domain.ErrForbidden("no organization membership")
	case domain.HasCode(err, domain.CodeStorage):
		return err
	}
	return domain.ErrStorage("resolve organization", err)
}

// scopeFrom returns the tenant scope placed by ResolveTenant.
func scopeFrom(r *http.Request) (*tenant.Scope, error) {
	scope, ok := tenant.FromContext(r.Context())
	if !ok {
		return nil, domain.ErrUnauthorized("no organization context")
	}
	return scope, nil
}

// subjectFrom returns the authenticated user ID.
func subjectFrom(r *http.Request) (string, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return "", domain.ErrUnauthorized("no subject in context")
	}
	return sub, nil
}

// RateLimit rejects requests over the limiter's budget, keyed by client IP.
func RateLimit(name string, rl *guard.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if res := rl.Check(r.Context(), name+":"+ClientIP(r)); !res.Allowed {
				rateLimitedCounter.WithLabelValues(name).Inc()
				RespondJSON(w, http.StatusTooManyRequests, map[string]string{
					"code":    "RATE_LIMITED",
					"message": res.Reason,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
