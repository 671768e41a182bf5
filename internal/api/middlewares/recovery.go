package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/logging"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logging.FromContext(r.Context()).
					WithField("method", r.Method).
					WithField("path", r.URL.Path).
					Errorf("panic: %v\n%s", err, debug.Stack())

				// Don't expose internal errors to client
				apperr.WriteStatus(w, r, http.StatusInternalServerError,
					"An unexpected fault happened. Try again later.", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
