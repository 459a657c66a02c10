package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"comptes/internal/datasource"
	applog "comptes/internal/log"
	"comptes/internal/middleware/ratelimit"
	"comptes/internal/middleware/security"
	"comptes/internal/middleware/trace"
	"comptes/internal/ui"
	appweb "comptes/web"
)

// ViewHeader carries the id of the page load whose selection a partial
// request reads and updates. The index page sets it on <body> with
// hx-headers so every htmx request of that page inherits it.
const ViewHeader = "X-View-ID"

type Options struct {
	RateLimitPerMinute int
	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string
	Logger         *applog.Logger
	// Now is the clock used for form defaults. Defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	data      *datasource.Client
	views     *ui.Store

	logger *applog.Logger
	events *applog.StructuredLogger
	now    func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a ready-to-run server.
func NewServer(addr string, data *datasource.Client, views *ui.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s := &Server{
		data:             data,
		views:            views,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		events:           applog.NewStructuredLogger(logger),
		now:              now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		appMetrics:       newAppMetrics(),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /ui/accounts", s.handleAccountsList)
	mux.HandleFunc("POST /ui/accounts", s.handleCreateAccount)
	mux.HandleFunc("POST /ui/accounts/refetch", s.handleRefetchAccounts)
	mux.HandleFunc("POST /ui/accounts/{id}/toggle", s.handleToggleAccount)
	mux.HandleFunc("POST /ui/accounts/{id}/delete", s.handleDeleteAccount)
	mux.HandleFunc("GET /ui/accounts/{id}/transactions", s.handleTransactionsPanel)
	mux.HandleFunc("POST /ui/accounts/{id}/transactions/form", s.handleToggleTransactionForm)
	mux.HandleFunc("POST /ui/accounts/{id}/transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /ui/account-form/toggle", s.handleToggleAccountForm)
	mux.HandleFunc("GET /ui/stats", s.handleStats)
	mux.HandleFunc("GET /ui/accounts-by-type", s.handleAccountsByType)
	mux.HandleFunc("POST /ui/filter", s.handleFilter)

	var handler http.Handler = mux
	handler = s.withView(handler)
	handler = s.limitMutations(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// limitMutations applies the per-IP rate limit to POST requests only.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

type viewKey struct{}

// withView resolves the page view of every page and partial request. A full
// page load starts a new view; partials must name theirs in ViewHeader.
func (s *Server) withView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		switch {
		case r.URL.Path == "/":
			id = ui.NewViewID()
		case strings.HasPrefix(r.URL.Path, "/ui/"):
			id = r.Header.Get(ViewHeader)
			if !ui.ValidViewID(id) {
				s.logger.WarnContext(r.Context(), "Partial request without a valid view id",
					applog.FieldPath, r.URL.Path)
				BadRequestError(msgViewExpired).TriggerErrorNotification(msgViewExpired).Write(w)
				return
			}
		default:
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), viewKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func viewID(r *http.Request) string {
	id, _ := r.Context().Value(viewKey{}).(string)
	return id
}

// render executes a template into a buffer so that a failure never leaves a half-written partial.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) ([]byte, bool) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldOperation, applog.OpRender)
		InternalServerError("templates not loaded").Write(w)
		return nil, false
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err)
		InternalServerError("Erreur de rendu").Write(w)
		return nil, false
	}
	return buf.Bytes(), true
}

// writePartial renders name and writes it with the builder's triggers and status.
func (s *Server) writePartial(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, name string, data any) {
	body, ok := s.render(w, r, name, data)
	if !ok {
		return
	}
	resp.BodyHTML(body).Write(w)
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
