package middleware

import (
	"net/http"
	"strings"
)

// PathResolver returns a [Resolver] for URLs of the form
// "/<prefix>/{session}/{artifact}". The prefix is matched without a
// trailing slash, so PathResolver("/artifacts") accepts
// "/artifacts/abc/def.png".
func PathResolver(prefix string) Resolver {
	prefix = strings.TrimSuffix(prefix, "/") + "/"

	return func(r *http.Request) (string, string, bool) {
		rest, found := strings.CutPrefix(r.URL.Path, prefix)
		if !found {
			return "", "", false
		}

		sessionID, artifactID, found := strings.Cut(rest, "/")
		if !found || sessionID == "" || artifactID == "" || strings.Contains(artifactID, "/") {
			return "", "", false
		}

		return sessionID, artifactID, true
	}
}
