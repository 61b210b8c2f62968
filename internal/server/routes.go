package server

import (
	"log/slog"
	"net/http"

	"systems-api/internal/procname"
	procnameHandlers "systems-api/internal/procname/handlers"
	"systems-api/internal/search"
	searchHandlers "systems-api/internal/search/handlers"
	serverHandlers "systems-api/internal/server/handlers"
)

type Routes struct {
	searcher search.Searcher
	names    procname.Interpreter
	db       serverHandlers.Pinger
	redis    serverHandlers.Pinger
	logger   *slog.Logger
}

// NewRoutes takes a nil redis when Redis is disabled.
func NewRoutes(searcher search.Searcher, names procname.Interpreter, db, redis serverHandlers.Pinger, logger *slog.Logger) *Routes {
	return &Routes{
		searcher: searcher,
		names:    names,
		db:       db,
		redis:    redis,
		logger:   logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.redis)
	searchHandler := searchHandlers.NewSearchHandler(r.searcher)
	procnameHandler := procnameHandlers.NewProcnameHandler(r.names)

	mux.Handle("/api/server/health", healthHandler)
	mux.HandleFunc("/api/search", searchHandler.Search)
	mux.HandleFunc("/api/procname", procnameHandler.Check)
	mux.HandleFunc("/api/proccoords", procnameHandler.Coords)

	logger.Info("Routes configured successfully",
		"endpoints", []string{"/api/server/health", "/api/search", "/api/procname", "/api/proccoords"},
	)

	return mux
}
