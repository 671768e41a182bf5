package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/logging"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Class separates reads from writes so that writes, which open
// transactions and may presign uploads, get a tighter budget.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

// ClassOf puts GET, HEAD and OPTIONS in the read class and every other
// method in the write class.
func ClassOf(r *http.Request) Class {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}

const keyPrefix = "courselib:rl"

type KeyFunc func(r *http.Request) string

// ClientKey names the Redis key of one client for one policy and request
// class: courselib:rl:<policy>:<class>:<ip>.
func ClientKey(policy string) KeyFunc {
	return func(r *http.Request) string {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		return keyPrefix + ":" + policy + ":" + string(ClassOf(r)) + ":" + ip
	}
}

func clientIP(r *http.Request) string {
	// first hop of X-Forwarded-For is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Rate is a token bucket refill rate and capacity.
type Rate struct {
	PerSecond float64
	Burst     int
}

// BucketLimits holds one Rate per request class.
type BucketLimits struct {
	Read, Write Rate
}

func (l BucketLimits) of(c Class) Rate {
	if c == ClassWrite {
		return l.Write
	}
	return l.Read
}

// takeToken refills the bucket from the server clock and takes one token.
// Returns {allowed, whole tokens left, retry after ms}.
var takeToken = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])

local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

local state = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local tokens = tonumber(state[1]) or burst
local at = tonumber(state[2]) or now
if now > at then
  tokens = math.min(burst, tokens + (now - at) * rate / 1000)
end

local allowed, wait = 0, 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  wait = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'at', now)
redis.call('PEXPIRE', KEYS[1], math.ceil(burst * 1000 / rate))
return {allowed, math.floor(tokens), wait}
`)

type RedisTokenBucket struct {
	rdb    *redis.Client
	keyFn  KeyFunc
	limits BucketLimits
}

func NewRedisTokenBucket(rdb *redis.Client, limits BucketLimits, keyFn KeyFunc) *RedisTokenBucket {
	return &RedisTokenBucket{rdb: rdb, keyFn: keyFn, limits: limits}
}

func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := tb.keyFn(r)
		rate := tb.limits.of(ClassOf(r))

		res, err := takeToken.Run(ctx, tb.rdb, []string{key},
			strconv.FormatFloat(rate.PerSecond, 'f', -1, 64),
			rate.Burst,
		).Int64Slice()
		if err != nil || len(res) != 3 {
			logging.FromContext(ctx).WithError(err).WithField("component", "ratelimit").
				Warn("token bucket unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		setLimitHeaders(w, "token-bucket", rate.Burst, res[1])
		if res[0] != 1 {
			limited(w, r, key, time.Duration(res[2])*time.Millisecond)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WindowLimits caps requests per class within Window.
type WindowLimits struct {
	Read, Write int
	Window      time.Duration
}

func (l WindowLimits) of(c Class) int {
	if c == ClassWrite {
		return l.Write
	}
	return l.Read
}

// admitToWindow trims entries older than the window and records the
// request only when it fits, so rejected requests do not extend a block.
// Returns {allowed, requests in window, ms until the oldest expires}.
var admitToWindow = redis.NewScript(`
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local count = redis.call('ZCARD', KEYS[1])
if count < limit then
  redis.call('ZADD', KEYS[1], now, ARGV[3])
  redis.call('PEXPIRE', KEYS[1], window)
  return {1, count + 1, 0}
end

local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local wait = window
if oldest[2] then
  wait = tonumber(oldest[2]) + window - now
end
return {0, count, wait}
`)

type RedisSlidingWindow struct {
	rdb    *redis.Client
	keyFn  KeyFunc
	limits WindowLimits
}

func NewRedisSlidingWindow(rdb *redis.Client, limits WindowLimits, keyFn KeyFunc) *RedisSlidingWindow {
	return &RedisSlidingWindow{rdb: rdb, keyFn: keyFn, limits: limits}
}

func (sw *RedisSlidingWindow) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := sw.keyFn(r)
		limit := sw.limits.of(ClassOf(r))

		res, err := admitToWindow.Run(ctx, sw.rdb, []string{key},
			limit, sw.limits.Window.Milliseconds(), uuid.NewString(),
		).Int64Slice()
		if err != nil || len(res) != 3 {
			logging.FromContext(ctx).WithError(err).WithField("component", "ratelimit").
				Warn("sliding window unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		setLimitHeaders(w, "sliding-window", limit, int64(limit)-res[1])
		if res[0] != 1 {
			limited(w, r, key, time.Duration(res[2])*time.Millisecond)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setLimitHeaders(w http.ResponseWriter, policy string, limit int, remaining int64) {
	w.Header().Set("X-RateLimit-Policy", policy)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, remaining), 10))
}

// RetryAfter rounds wait up to whole seconds, never below one.
func RetryAfter(wait time.Duration) int64 {
	sec := int64((wait + time.Second - 1) / time.Second)
	return max(1, sec)
}

func limited(w http.ResponseWriter, r *http.Request, key string, wait time.Duration) {
	sec := RetryAfter(wait)
	w.Header().Set("Retry-After", strconv.FormatInt(sec, 10))
	logging.FromContext(r.Context()).WithField("component", "ratelimit").
		Infof("blocked %s, retry after %ds", key, sec)
	apperr.WriteStatus(w, r, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded, retry later")
}
