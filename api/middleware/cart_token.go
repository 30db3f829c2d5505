package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const cartTokenHeader = "X-Cart-Token"

// CartToken resolves the cart identity for the request: the authenticated
// user id when logged in, else the guest token from the X-Cart-Token header,
// else a fresh guest UUID. The resolved token is echoed back in the response
// header so guests can persist it client-side.
func CartToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if userID := UserIDFromContext(r.Context()); userID > 0 {
				token = strconv.FormatInt(userID, 10)
			}
			if token == "" {
				token = strings.TrimSpace(r.Header.Get(cartTokenHeader))
				if _, err := uuid.Parse(token); err != nil {
					token = ""
				}
			}
			if token == "" {
				token = uuid.NewString()
			}

			w.Header().Set(cartTokenHeader, token)
			ctx := WithCartToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
