package handler

import (
	"net/http"
	"regexp"

	"paper-reader/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Files        *FileHandler
	Papers       *PaperHandler
	Highlights   *HighlightHandler
	Chat         *ChatHandler
	Subscription *SubscriptionHandler
}

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	Auth           *AuthMiddleware
	RateLimiter    *RateLimiter
	Logger         domain.Logger
	AllowedOrigins []string
}

var localhostOrigin = regexp.MustCompile(`^http://localhost:\d+$`)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware(opts.Logger))

	api := router.PathPrefix("/api").Subrouter()

	// Health check endpoint (no auth required)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Everything else decodes an optional bearer token.
	app := api.PathPrefix("").Subrouter()
	app.Use(opts.Auth.Middleware)

	app.HandleFunc("/files/roots", h.Files.Roots).Methods("GET")
	app.HandleFunc("/files/browse", h.Files.Browse).Methods("GET")

	app.HandleFunc("/papers/pdf", h.Papers.GetPDF).Methods("GET", "HEAD")
	app.HandleFunc("/papers/text", h.Papers.GetText).Methods("GET")
	app.HandleFunc("/papers/metadata", h.Papers.GetMetadata).Methods("GET")
	app.HandleFunc("/papers/recent", h.Papers.GetRecent).Methods("GET")

	app.HandleFunc("/highlights", h.Highlights.ListHighlights).Methods("GET")
	app.HandleFunc("/highlights", h.Highlights.CreateHighlight).Methods("POST")
	app.HandleFunc("/highlights/{id}", h.Highlights.UpdateHighlight).Methods("PATCH")
	app.HandleFunc("/highlights/{id}", h.Highlights.DeleteHighlight).Methods("DELETE")

	limit := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if opts.RateLimiter != nil {
		limit = opts.RateLimiter.Limit
	}
	app.HandleFunc("/chat/models", h.Chat.ListModels).Methods("GET")
	app.HandleFunc("/chat/ask", limit(h.Chat.Ask)).Methods("POST")
	app.HandleFunc("/chat/conversation", limit(h.Chat.Conversation)).Methods("POST")
	app.HandleFunc("/chat/history", h.Chat.GetHistory).Methods("GET")
	app.HandleFunc("/chat/history", h.Chat.ClearHistory).Methods("DELETE")

	app.HandleFunc("/subscription/status", opts.Auth.RequireAuth(h.Subscription.Status)).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowOriginFunc: originMatcher(opts.AllowedOrigins),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Content-Range",
			"Accept-Ranges",
			"X-Model",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}

// originMatcher accepts the configured origins ("*" for any) plus any
// http://localhost:<port> dev server.
func originMatcher(allowed []string) func(string) bool {
	set := make(map[string]struct{}, len(allowed))
	allowAll := false
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = struct{}{}
	}
	return func(origin string) bool {
		if allowAll || localhostOrigin.MatchString(origin) {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
