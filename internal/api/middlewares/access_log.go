package middlewares

import (
	"net/http"
	"time"

	"github.com/5w1tchy/course-library-api/internal/logging"
	"github.com/sirupsen/logrus"
)

// AccessLog logs one line per request at info, or warn for 5xx.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newStatusWriter(w)
		next.ServeHTTP(rw, r)

		entry := logging.FromContext(r.Context()).WithFields(logrus.Fields{
			"component": "http",
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rw.status,
			"bytes":     rw.bytes,
			"duration":  time.Since(rw.start).Round(time.Microsecond).String(),
		})
		if rw.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request")
	})
}
