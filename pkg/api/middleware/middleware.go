package middleware

import (
	"context"
	"net/http"

	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/transport"
)

type ContextKey int

const (
	// UserContextKey is the key used to store the caller in the request context
	UserContextKey ContextKey = iota
)

// NewIdentityMiddleware trusts the identity headers set by the host's
// authentication front. Requests without a public key are rejected.
func NewIdentityMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := transport.UserInfo{
				Nickname:    r.Header.Get(transport.HeaderNickname),
				PublicKeyID: r.Header.Get(transport.HeaderPublicKey),
			}
			if user.PublicKeyID == "" {
				log.Debug("rejecting %s %s without a public key", r.Method, r.URL.Path)
				http.Error(w, "missing public key", http.StatusUnauthorized)
				return
			}
			if user.Nickname == "" {
				user.Nickname = user.PublicKeyID
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the caller stored by the identity middleware.
func UserFromContext(ctx context.Context) (transport.UserInfo, bool) {
	user, ok := ctx.Value(UserContextKey).(transport.UserInfo)
	return user, ok
}
