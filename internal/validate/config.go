package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/5w1tchy/course-library-api/internal/config"
)

// HardeningWarnings returns non-fatal configuration warnings to log on
// start-up.
func HardeningWarnings(cfg config.Config) []string {
	var warns []string

	if cfg.RateLimit.Window > 0 && cfg.RateLimit.Window < time.Minute {
		warns = append(warns, fmt.Sprintf("RATE_LIMIT_WINDOW=%s is < 1m; the sliding window barely limits bursts", cfg.RateLimit.Window))
	}
	if cfg.Storage.Enabled() && cfg.Storage.PresignTTL > time.Hour {
		warns = append(warns, fmt.Sprintf("AWS_PRESIGN_TTL=%s is > 1h; consider shorter-lived syllabus URLs", cfg.Storage.PresignTTL))
	}

	if !cfg.IsProduction() {
		return warns
	}
	if !cfg.TLSEnabled() {
		warns = append(warns, "TLS_CERT_FILE/TLS_KEY_FILE not set; terminate TLS in front of the service")
	}
	if !cfg.Redis.Enabled() {
		warns = append(warns, "no Redis configured; rate limiting is disabled")
	} else {
		if strings.HasPrefix(cfg.Redis.URL, "redis://") {
			warns = append(warns, "UPSTASH_REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if cfg.Redis.URL == "" && (cfg.Redis.User == "" || cfg.Redis.Password == "") {
			warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
		}
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			warns = append(warns, "CORS_ALLOWED_ORIGINS contains *; list explicit origins in production")
		}
		if strings.HasPrefix(o, "http://localhost") || strings.HasPrefix(o, "http://127.0.0.1") {
			warns = append(warns, "CORS_ALLOWED_ORIGINS allows "+o+" in production")
		}
	}
	if !cfg.StrictSecurity {
		warns = append(warns, "STRICT_SECURITY is off; cross-origin isolation headers are not sent")
	}
	return warns
}
