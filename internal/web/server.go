package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/prospect-dedup/internal/pipeline"
	"github.com/prospect-dedup/internal/store"
	"github.com/prospect-dedup/internal/web/handlers"
	"github.com/prospect-dedup/internal/web/middleware"
)

// Server exposes the standardization engine over HTTP
type Server struct {
	config     *Config
	pipe       *pipeline.Pipeline
	store      *store.Store
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance. The store may be nil, in
// which case batch persistence endpoints are disabled.
func NewServer(config *Config, pipe *pipeline.Pipeline, st *store.Store) *Server {
	server := &Server{
		config: config,
		pipe:   pipe,
		store:  st,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         config.Addr,
		Handler:      server.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	processHandler := &handlers.ProcessHandler{
		Pipeline:       s.pipe,
		Store:          s.store,
		MaxUploadBytes: s.config.MaxUploadBytes,
	}
	batchesHandler := &handlers.BatchesHandler{Store: s.store}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/process", processHandler.ProcessUpload).Methods("POST")
	api.HandleFunc("/batches", batchesHandler.ListBatches).Methods("GET")
	api.HandleFunc("/health", handlers.Health).Methods("GET")

	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging())
}

// Start starts the web server and blocks until a shutdown signal
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	return nil
}
