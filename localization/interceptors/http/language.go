package http

import (
	"net/http"

	"github.com/pitabwire/culture"
	"github.com/pitabwire/culture/localization"
)

// LanguageHTTPMiddleware gives every request its own culture state, set from the
// lang query parameter or the Accept-Language header.
func LanguageHTTPMiddleware(cultures *culture.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := localization.ExtractLanguageFromHTTPRequest(r)

			ctx := localization.WithRequestCulture(r.Context(), cultures, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
