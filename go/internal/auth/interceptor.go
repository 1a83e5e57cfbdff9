package auth

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"
)

// NewInterceptor authenticates every unary call. Calls without a valid bearer token
// fail with CodeUnauthenticated before reaching a handler.
func NewInterceptor(v *Verifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			actor, err := v.Verify(bearerToken(req.Header().Get("Authorization")))
			if err != nil {
				log.Debug().Err(err).Str("procedure", req.Spec().Procedure).Msg("rejected unauthenticated call")
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithActor(ctx, actor), req)
		}
	}
}

// Middleware is the plain HTTP equivalent of NewInterceptor for download routes.
func Middleware(v *Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := v.Verify(bearerToken(r.Header.Get("Authorization")))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}
