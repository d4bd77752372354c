package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests without a valid access token. The
// organization and user identities are read from the claims per request by
// the handlers; nothing is stashed in ambient state.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "Missing access token")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "Invalid access token")
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.Unauthorized(w, "Invalid access token")
				return
			}

			orgID, _ := claims["organization_id"].(string)
			userID, _ := claims["user_id"].(string)
			if orgID == "" || userID == "" {
				response.Unauthorized(w, "Token is missing identity claims")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// Identity extracts the organization and user IDs from the verified token.
// AuthRequired has already guaranteed both claims are present.
func Identity(r *http.Request) (organizationID, userID string) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", ""
	}

	organizationID, _ = claims["organization_id"].(string)
	userID, _ = claims["user_id"].(string)
	return organizationID, userID
}
