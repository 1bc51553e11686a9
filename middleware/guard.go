package middleware

import (
	"context"
	"net/http"
	"strings"

	goRedact "github.com/MrEthical07/goRedact"
)

// ArtifactGrant records which session/artifact pair a request was cleared for.
type ArtifactGrant struct {
	SessionID  string
	ArtifactID string
}

type artifactGrantContextKey struct{}

// ArtifactGrantFromContext returns the grant injected by [ArtifactGuard], if any.
func ArtifactGrantFromContext(ctx context.Context) (*ArtifactGrant, bool) {
	grant, ok := ctx.Value(artifactGrantContextKey{}).(*ArtifactGrant)
	return grant, ok
}

// Resolver maps an incoming request to the session and artifact it targets.
// Returning ok=false rejects the request with 404 before any token check.
type Resolver func(r *http.Request) (sessionID, artifactID string, ok bool)

// ArtifactGuard returns middleware that requires a valid artifact access token
// for the session/artifact pair named by the request.
func ArtifactGuard(engine *goRedact.Engine, resolve Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || resolve == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			sessionID, artifactID, ok := resolve(r)
			if !ok {
				http.NotFound(w, r)
				return
			}

			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := engine.VerifyArtifactToken(sessionID, artifactID, tok); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			grant := &ArtifactGrant{SessionID: sessionID, ArtifactID: artifactID}
			ctx := context.WithValue(r.Context(), artifactGrantContextKey{}, grant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
