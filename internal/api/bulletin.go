package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/npezzotti/go-bulletin/internal/config"
	"github.com/npezzotti/go-bulletin/internal/database"
	"github.com/npezzotti/go-bulletin/internal/events"
	"github.com/npezzotti/go-bulletin/internal/stats"
	"github.com/npezzotti/go-bulletin/internal/types"
	"github.com/teris-io/shortid"
)

// Notifier receives announcements after they are persisted. Implementations
// must never fail the caller.
type Notifier interface {
	AnnouncementCreated(a types.Announcement)
}

type BulletinApp struct {
	log            *log.Logger
	db             database.BulletinRepository
	mux            *http.Server
	hub            *events.Hub
	notifier       Notifier
	stats          stats.StatsProvider
	signingKey     []byte
	allowedOrigins []string

	generateShortId func() (string, error)
}

func NewBulletinApp(mux *http.ServeMux, logger *log.Logger, hub *events.Hub, db database.BulletinRepository,
	notifier Notifier, sp stats.StatsProvider, cfg *config.Config) *BulletinApp {
	s := &BulletinApp{
		log:             logger,
		db:              db,
		hub:             hub,
		notifier:        notifier,
		stats:           sp,
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	if sp != nil {
		sp.RegisterMetric(stats.AnnouncementsCreated)
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("GET /api/announcements", s.listAnnouncements)
	mux.HandleFunc("POST /api/announcements", s.authMiddleware(s.requireCapability(types.Role.CanPostAnnouncements, s.createAnnouncement)))
	mux.HandleFunc("POST /api/comments", s.authMiddleware(s.createComment))
	mux.HandleFunc("POST /api/push/subscribe", s.authMiddleware(s.subscribePush))
	mux.HandleFunc("GET /api/users", s.authMiddleware(s.requireCapability(types.Role.CanManageUsers, s.listUsers)))
	mux.HandleFunc("POST /api/users", s.authMiddleware(s.requireCapability(types.Role.CanManageUsers, s.createUser)))
	mux.HandleFunc("DELETE /api/users/{id}", s.authMiddleware(s.requireCapability(types.Role.CanManageUsers, s.deleteUser)))
	mux.HandleFunc("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *BulletinApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *BulletinApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
