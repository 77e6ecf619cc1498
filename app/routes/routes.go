package routes

import (
	"net/http"
	"strings"
	"time"

	"yatube/app/auth"
	"yatube/app/controllers"
	"yatube/app/middleware"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps is everything the router needs.
type Deps struct {
	Services  *services.Services
	Sessions  *auth.Sessions
	Views     *views.Renderer
	Logger    *zap.Logger
	MediaDir  string
	MaxUpload int64

	// PageCache caches the index page when set.
	PageCache *middleware.PageCache
	// LoginLimiter throttles login and signup attempts when set.
	LoginLimiter *middleware.RateLimiter
	// CSRF configures the form token check.
	CSRF middleware.CSRFConfig
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(d Deps) (*mux.Router, error) {
	router := mux.NewRouter()

	postController := controllers.NewPostController(d.Services, d.Views, d.Logger, d.MaxUpload)
	commentController := controllers.NewCommentController(d.Services, postController)
	followController := controllers.NewFollowController(d.Services, d.Views, d.Logger)
	authController := controllers.NewAuthController(d.Services, d.Sessions, d.Views, d.Logger)
	coreController := controllers.NewCoreController(d.Views, d.Logger)

	csrfProtect, err := middleware.CSRF(d.CSRF, http.HandlerFunc(coreController.CSRFFailure))
	if err != nil {
		return nil, err
	}

	// Apply global middleware
	global := []mux.MiddlewareFunc{
		middleware.Logger(d.Logger),
		middleware.Recoverer(d.Logger),
		csrfProtect,
		middleware.Authenticate(d.Sessions, d.Services.Users, d.Logger),
	}
	for _, mw := range global {
		router.Use(mw)
	}
	// Middleware only runs on matched routes, so the 404 handler is
	// wrapped by hand.
	notFound := appendSlash(router, http.HandlerFunc(coreController.NotFound))
	for i := len(global) - 1; i >= 0; i-- {
		notFound = global[i](notFound)
	}
	router.NotFoundHandler = notFound

	private := middleware.RequireLogin(controllers.LoginPath)
	login := func(h http.HandlerFunc) http.Handler { return private(h) }

	// Assets
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", views.Static()))
	router.PathPrefix("/media/").Handler(http.StripPrefix("/media/", noListing(http.FileServer(http.Dir(d.MediaDir)))))

	// Feeds
	var index http.Handler = http.HandlerFunc(postController.Index)
	if d.PageCache != nil {
		index = middleware.CachePage(d.PageCache)(index)
	}
	router.Handle("/", index).Methods("GET")
	router.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET")
	router.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET")
	router.Handle("/follow/", login(followController.Index)).Methods("GET")

	// Posts
	router.HandleFunc("/posts/{id:[0-9]+}/", postController.Show).Methods("GET")
	router.Handle("/create/", login(postController.New)).Methods("GET")
	router.Handle("/create/", login(postController.Create)).Methods("POST")
	router.Handle("/posts/{id:[0-9]+}/edit/", login(postController.EditForm)).Methods("GET")
	router.Handle("/posts/{id:[0-9]+}/edit/", login(postController.Edit)).Methods("POST")
	router.Handle("/posts/{id:[0-9]+}/delete/", login(postController.Delete)).Methods("POST")
	router.Handle("/posts/{id:[0-9]+}/comment/", login(commentController.Create)).Methods("POST")

	// Follows
	router.Handle("/profile/{username}/follow/", login(followController.Follow)).Methods("POST")
	router.Handle("/profile/{username}/unfollow/", login(followController.Unfollow)).Methods("POST")

	// Accounts
	throttled := func(h http.HandlerFunc) http.Handler {
		if d.LoginLimiter == nil {
			return h
		}
		return middleware.RateLimit(d.LoginLimiter, d.Logger)(h)
	}
	accounts := router.PathPrefix("/auth").Subrouter()
	accounts.HandleFunc("/signup/", authController.SignupForm).Methods("GET")
	accounts.Handle("/signup/", throttled(authController.Signup)).Methods("POST")
	accounts.HandleFunc("/login/", authController.LoginForm).Methods("GET")
	accounts.Handle("/login/", throttled(authController.Login)).Methods("POST")
	accounts.HandleFunc("/logout/", authController.Logout).Methods("POST")

	return router, nil
}

// appendSlash redirects to the same URL with a trailing slash when
// that URL has a route. GET and HEAD get 301; other methods get 308 so
// the browser resends the form body.
func appendSlash(router *mux.Router, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			next.ServeHTTP(w, r)
			return
		}
		target := *r.URL
		target.Path += "/"
		target.RawPath = ""

		candidate := r.Clone(r.Context())
		candidate.URL = &target
		var match mux.RouteMatch
		if !router.Match(candidate, &match) || match.MatchErr != nil {
			next.ServeHTTP(w, r)
			return
		}

		status := http.StatusMovedPermanently
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			status = http.StatusPermanentRedirect
		}
		http.Redirect(w, r, target.RequestURI(), status)
	})
}

// noListing hides directory indexes.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewServer returns an HTTP server for handler with the timeouts the
// site runs with.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
