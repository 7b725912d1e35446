package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tiksave/backend/internal/clients"
	"github.com/tiksave/backend/internal/logging"
	"github.com/tiksave/backend/internal/models"
)

// ClientTokenHeader carries the anonymous client token on every
// client-scoped request.
const ClientTokenHeader = "X-Client-Token"

// ClientAuthenticator resolves a client token to a registered client.
type ClientAuthenticator interface {
	Authenticate(ctx context.Context, token string) (models.Client, error)
}

// ClientAuth requires a valid client token and attaches the resolved
// client id to the request context and log records.
func ClientAuth(registry ClientAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(ClientTokenHeader)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "client token required")
				return
			}

			client, err := registry.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, clients.ErrClientNotFound) {
					writeAuthError(w, http.StatusUnauthorized, "unknown client token")
					return
				}
				logging.FromContext(r.Context()).Error("authenticate client", "error", err)
				writeAuthError(w, http.StatusInternalServerError, "could not verify client token")
				return
			}

			ctx := logging.WithClientID(r.Context(), client.ID)
			logger := logging.FromContext(ctx).With(slog.String("client_id", client.ID))
			ctx = logging.WithLogger(ctx, logger)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
