package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/gajihub/payroll-core-go/internal/handler/http/response"
)

// AuthRequired verifies a valid access token is present. It runs after
// jwtauth.Verifier, which parses the token into the request context.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.Unauthorized(w, "Invalid or missing token")
			return
		}

		// Refresh tokens must not reach the API surface.
		if tokenType, ok := claims["type"].(string); !ok || tokenType != "access" {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		if companyID, ok := claims["company_id"].(string); !ok || companyID == "" {
			response.Unauthorized(w, "Token is missing company scope")
			return
		}

		next.ServeHTTP(w, r)
	})
}
