package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/gajihub/payroll-core-go/internal/handler/http/response"
)

// AdminOnly restricts a route to company administrators.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid or missing token")
			return
		}

		if isAdmin, ok := claims["is_admin"].(bool); !ok || !isAdmin {
			response.Forbidden(w, "Admin privilege required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
