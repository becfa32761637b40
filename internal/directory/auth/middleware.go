package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// HTTPMiddleware guards the mutating REST routes with the same token check
// as the gRPC interceptor.
func HTTPMiddleware(next http.Handler, jwtSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication for non-protected endpoints
		if !isProtectedRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := extractTokenFromHeader(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractTokenFromHeader(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header required")
	}
	return bearerToken(authHeader)
}

// isProtectedRequest maps the REST routes onto the protected gRPC methods.
// The validate route only reads, so a POST to it stays public.
func isProtectedRequest(r *http.Request) bool {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if !strings.HasPrefix(path, "/v1/employees") {
		return false
	}
	switch r.Method {
	case http.MethodPost:
		return path == "/v1/employees" // CreateEmployee
	case http.MethodPatch:
		return strings.HasPrefix(path, "/v1/employees/") // UpdateEmployee
	case http.MethodDelete:
		return true // DeleteEmployee, DeleteAllEmployees
	default:
		return false
	}
}
