package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/digikraal/ledgerview/api/responses"
	pkgAuth "github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/auth/session"
	"github.com/digikraal/ledgerview/pkg/config"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
)

const bearerPrefix = "bearer "

var errMissingCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")

// BearerToken reads the Authorization header. The "Bearer" scheme is
// optional and matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	if token == "" {
		return "", errMissingCredentials
	}
	return token, nil
}

// Auth admits requests carrying a valid access token whose session is still
// live, and stores the caller's identity on the context.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(r, cfg, sessions)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.ID.String())
				ctx = logg.WithActorRole(ctx, string(identity.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, sessions session.AccessSessionChecker) (pkgAuth.Identity, error) {
	token, err := BearerToken(r)
	if err != nil {
		return pkgAuth.Identity{}, err
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return pkgAuth.Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := checkSession(r.Context(), sessions, claims.ID); err != nil {
		return pkgAuth.Identity{}, err
	}
	return claims.Identity(), nil
}

func checkSession(ctx context.Context, sessions session.AccessSessionChecker, accessID string) error {
	if sessions == nil {
		return nil
	}
	live, err := sessions.HasSession(ctx, accessID)
	switch {
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	case !live:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}
	return nil
}
