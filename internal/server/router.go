// Package server binds the handlers to routes.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/auth"
	"github.com/podcastify/podcastify-api/internal/community"
	"github.com/podcastify/podcastify-api/internal/media"
	"github.com/podcastify/podcastify-api/internal/middleware"
	"github.com/podcastify/podcastify-api/internal/podcast"
	"github.com/podcastify/podcastify-api/internal/users"
)

// Deps is everything the router needs, built once at startup.
type Deps struct {
	Tokens      *auth.Tokens
	Revocations middleware.RevocationChecker
	Auth        *auth.Handler
	Podcasts    *podcast.Handler
	Users       *users.Handler
	Community   *community.Handler
	Media       *media.Handler
	CORSOrigins []string
	Log         *zap.Logger
}

// NewRouter mounts every route. Mutations are gated except token issuance,
// account registration/login and the first-login profile save. Reads of
// user and admin data are gated. Content reads are public.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Range"},
		ExposedHeaders:   []string{"Content-Range", "Accept-Ranges", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Server is running..."))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public
	r.Post("/jwt", d.Auth.IssueToken)
	r.Post("/auth/register", d.Auth.Register)
	r.Post("/auth/login", d.Auth.Login)
	r.Post("/users", d.Users.Save)

	r.Get("/podcast", d.Podcasts.List)
	r.Get("/podcast/{id}", d.Podcasts.Get)
	r.Get("/manage-podcast", d.Podcasts.Manage)
	r.Get("/manage-playlist", d.Community.ManagePlaylist)
	r.Get("/allReviews", d.Community.ListReviews)
	r.Get("/announcements", d.Community.ListAnnouncements)
	r.Get("/announcements/{id}", d.Community.GetAnnouncement)
	r.Get("/notification-reaction/{id}", d.Community.Reactions)
	r.Get("/mySubscription/{email}", d.Community.MySubscriptions)
	r.Get("/video/{filename}", d.Media.StreamVideo)
	r.Get("/uploads/*", d.Media.ServeUpload)

	// Gated
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Tokens, d.Revocations, d.Log))

		r.Post("/logout", d.Auth.Logout)

		r.Post("/podcast", d.Podcasts.Create)
		r.Post("/upload", d.Podcasts.Create)
		r.Put("/podcast/{id}", d.Podcasts.Update)
		r.Delete("/podcast/{id}", d.Podcasts.Delete)
		r.Post("/video-upload", d.Media.UploadVideo)

		r.Get("/users", d.Users.List)
		r.Get("/users/email/{email}", d.Users.GetByEmail)
		r.Put("/users/email/{email}", d.Users.UpdateProfile)
		r.Put("/users/request/{email}", d.Users.ResolveRequest)
		r.Delete("/users/{id}", d.Users.Delete)
		r.Get("/request-podcaster", d.Users.PodcasterRequests)
		r.Get("/admin-stats", d.Users.Stats)

		r.Post("/playlist", d.Community.AddToPlaylist)
		r.Delete("/playlist/{id}", d.Community.RemoveFromPlaylist)
		r.Post("/addReview", d.Community.AddReview)
		r.Post("/make-announcement", d.Community.Announce)
		r.Post("/notification-reaction", d.Community.React)
		r.Post("/subscriptions", d.Community.Subscribe)
	})

	return r
}
