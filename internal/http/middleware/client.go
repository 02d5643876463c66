package middleware

import (
	"context"
	"net/http"

	scs "github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

type contextKey string

const (
	ClientIDKey contextKey = "client_id"

	// session key the client ID is stored under
	sessionClientID = "client_id"
)

// ClientID makes sure every request carries a client ID. The ID is kept in
// the session so the same browser keeps the same ID across requests. It must
// run inside sess.LoadAndSave.
func ClientID(sess *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := sess.GetString(ctx, sessionClientID)
			if id == "" {
				id = uuid.NewString()
				sess.Put(ctx, sessionClientID, id)
				hlog.FromRequest(r).Debug().Str("client_id", id).Msg("new client")
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ClientIDKey, id)))
		})
	}
}

// ClientIDFrom returns the client ID set by ClientID, or "".
func ClientIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ClientIDKey).(string)
	return id
}

// RequireClientID rejects requests that reached the handler without a client ID.
func RequireClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ClientIDFrom(r.Context()) == "" {
			http.Error(w, "missing client", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
