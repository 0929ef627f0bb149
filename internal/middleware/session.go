package middleware

import (
	"context"
	"net/http"

	"storycanvas/internal/session"
)

type sessionKey struct{}

// SessionHeader carries the client's session identifier. Browsers that
// have not seen one yet omit it and are assigned a fresh session, echoed
// back in the response.
const SessionHeader = "X-Session-ID"

// Session resolves the request's session ID, minting one when absent,
// and stores it in the context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(SessionHeader)
		if sid == "" {
			sid = session.NewID()
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sid)
		w.Header().Set(SessionHeader, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok {
		return v
	}
	return ""
}
