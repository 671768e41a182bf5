package router

import (
	"database/sql"
	"net/http"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/api/handlers"
	"github.com/5w1tchy/course-library-api/internal/api/handlers/authorcollections"
	"github.com/5w1tchy/course-library-api/internal/api/handlers/authors"
	"github.com/5w1tchy/course-library-api/internal/api/handlers/courses"
	"github.com/5w1tchy/course-library-api/internal/api/middlewares"
	"github.com/5w1tchy/course-library-api/internal/api/resources"
	"github.com/5w1tchy/course-library-api/internal/hateoas"
	"github.com/5w1tchy/course-library-api/internal/mapper"
	"github.com/5w1tchy/course-library-api/internal/propmap"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	DB      *sql.DB
	Sorts   *propmap.Registry
	Mapper  *mapper.Mapper         // defaults to mapper.New()
	Syllabi handlers.SyllabusStore // optional
	Metrics *prometheus.Registry   // nil leaves /metrics unmounted
}

// Router mounts the API under /api plus /health and /metrics. Links are
// reversed from the same router, so every named route is linkable.
func Router(opts Options) http.Handler {
	r := mux.NewRouter()
	var notFound, notAllowed http.Handler
	notFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apperr.WriteStatus(w, req, http.StatusNotFound, "Not Found", "no resource at "+req.URL.Path)
	})
	notAllowed = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apperr.WriteStatus(w, req, http.StatusMethodNotAllowed, "Method Not Allowed", req.Method+" is not supported here")
	})
	if opts.Metrics != nil {
		// mux skips Use middlewares when nothing matched
		m := middlewares.NewMetrics(opts.Metrics)
		r.Use(m.Middleware)
		notFound, notAllowed = m.Middleware(notFound), m.Middleware(notAllowed)
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notAllowed

	if opts.Mapper == nil {
		opts.Mapper = mapper.New()
	}
	d := handlers.Deps{
		DB:      opts.DB,
		Sorts:   opts.Sorts,
		Fields:  resources.NewChecker(),
		Links:   hateoas.NewLinker(hateoas.NewMuxRoutes(r)),
		Mapper:  opts.Mapper,
		Syllabi: opts.Syllabi,
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/", handlers.Root(d)).Methods(http.MethodGet).Name(resources.GetRoot)
	authors.Register(api, d)
	courses.Register(api, d)
	authorcollections.Register(api, d)

	r.Handle("/health", handlers.Health(d)).Methods(http.MethodGet)

	return r
}
