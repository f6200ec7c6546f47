package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jjudge-oj/userservice/config"
	"github.com/jjudge-oj/userservice/internal/assembler"
	"github.com/jjudge-oj/userservice/internal/db"
	"github.com/jjudge-oj/userservice/internal/handlers"
	"github.com/jjudge-oj/userservice/internal/hateoas"
	"github.com/jjudge-oj/userservice/internal/logging"
	"github.com/jjudge-oj/userservice/internal/mq"
	"github.com/jjudge-oj/userservice/internal/services"
	"github.com/jjudge-oj/userservice/internal/storage"
	"github.com/jjudge-oj/userservice/internal/store"
	"go.uber.org/zap"
)

const requestTimeout = 60 * time.Second

// Server wraps the HTTP server and the resources it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	storage    *storage.Storage
	mq         *mq.MQ
	logger     *zap.Logger
}

// New connects every backing service named by cfg and builds the router.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	linker, err := hateoas.NewLinker(cfg.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("public base url: %w", err)
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	s := &Server{db: dbConn, logger: logger}

	if s.storage, err = storage.New(ctx, cfg.Storage); err != nil {
		s.close()
		return nil, err
	}
	if s.storage != nil {
		if err := s.storage.EnsureBucket(ctx); err != nil {
			s.close()
			return nil, err
		}
		logger.Info("profile images enabled",
			zap.String("backend", cfg.Storage.Backend),
			zap.String("bucket", s.storage.Bucket()),
		)
	}

	if s.mq, err = mq.New(ctx, cfg.MQ); err != nil {
		s.close()
		return nil, err
	}
	if s.mq != nil {
		logger.Info("user events enabled",
			zap.String("backend", cfg.MQ.Backend),
			zap.String("channel", cfg.MQ.UserEventsChannel),
		)
	}

	// Interfaces must stay nil, not hold a nil pointer, when a backend is off.
	var (
		publisher services.Publisher
		images    services.ImageStore
	)
	if s.mq != nil {
		publisher = s.mq
	}
	if s.storage != nil {
		images = s.storage
	}

	asm := assembler.New(linker)
	events := services.NewEvents(publisher, cfg.MQ.UserEventsChannel, logger)

	userService := services.NewUserService(store.NewUserRepository(dbConn), asm, events, images, logger)
	profileService := services.NewProfileService(
		store.NewProfileRepository(dbConn),
		asm,
		linker,
		events,
		images,
		cfg.Storage.ProfileImageMaxBytes,
		logger,
	)
	addressService := services.NewAddressService(store.NewAddressRepository(dbConn), asm, events, logger)

	s.router = newRouter(logger, dbConn, userService, profileService, addressService, cfg.Storage.ProfileImageMaxBytes)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func newRouter(
	logger *zap.Logger,
	pinger handlers.Pinger,
	users handlers.UserService,
	profiles handlers.ProfileService,
	addresses handlers.AddressService,
	maxImageBytes int64,
) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger(logger),
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	router.Get("/healthz", handlers.Healthz(pinger))
	router.Route("/v1/users", func(r chi.Router) {
		handlers.UserRouter(r, users, profiles, addresses, maxImageBytes)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the broker, storage and
// database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			s.logger.Warn("close mq", zap.Error(err))
		}
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			s.logger.Warn("close storage", zap.Error(err))
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
