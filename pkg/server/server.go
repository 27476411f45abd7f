package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/dd-tools/databook/pkg/handlers/session"
	databookmiddleware "github.com/dd-tools/databook/pkg/server/middleware"
	"github.com/dd-tools/databook/pkg/services/session"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

type Dependencies struct {
	Sessions *session.Service
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	sessionHandler := handlers.NewHandler(config.Dependencies.Sessions)

	router := chi.NewRouter()

	router.Use(databookmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", sessionHandler.CreateSession)
		r.Route("/sessions/{session}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Delete("/", sessionHandler.DeleteSession)
			r.Post("/files", sessionHandler.UploadFile)
			r.Get("/statements", sessionHandler.GetStatements)
			r.Get("/traces/{field}", sessionHandler.GetTrace)
			r.Get("/bridges/{kind}", sessionHandler.GetBridge)
			r.Get("/cashflow", sessionHandler.GetCashFlow)
			r.Get("/monthly", sessionHandler.GetMonthly)
			r.Get("/details", sessionHandler.GetDetails)
			r.Get("/accounts", sessionHandler.GetAccounts)
			r.Get("/entries", sessionHandler.GetEntries)
			r.Post("/agent", sessionHandler.AskAgent)
		})
	})

	timeout := config.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: timeout,
	}
}

// Router exposes the mux for tests.
func (w *WebAPI) Router() http.Handler { return w.router }

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
