package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"ms-booking/internal/models"
)

type contextKey string

const holderKey contextKey = "holder"

// Middleware verifies bearer tokens against the configured OIDC issuer and
// injects the resolved holder identity into the request context. The
// booking core never authenticates; it only consumes this identity.
func Middleware(issuer string) func(http.Handler) http.Handler {
	if issuer == "" {
		panic("OIDC issuer not configured")
	}

	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		panic(fmt.Sprintf("Failed to create OIDC provider: %v", err))
	}

	verifier := provider.Verifier(&oidc.Config{
		SkipClientIDCheck: true,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			idToken, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			var claims struct {
				Sub   string `json:"sub"`
				Name  string `json:"name"`
				Email string `json:"email"`
				Phone string `json:"phone_number"`
				Role  string `json:"role"`
			}
			if err := idToken.Claims(&claims); err != nil {
				http.Error(w, "failed to parse claims", http.StatusUnauthorized)
				return
			}

			holder := models.Holder{
				ID:    claims.Sub,
				Name:  claims.Name,
				Email: claims.Email,
				Phone: claims.Phone,
				Admin: claims.Role == "admin",
			}

			ctx := context.WithValue(r.Context(), holderKey, holder)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HolderFrom extracts the authenticated holder from a request context.
func HolderFrom(ctx context.Context) (models.Holder, bool) {
	h, ok := ctx.Value(holderKey).(models.Holder)
	return h, ok
}

// WithHolder returns a context carrying the given holder. Used by tests and
// by internal callers acting on behalf of a resolved identity.
func WithHolder(ctx context.Context, h models.Holder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}
