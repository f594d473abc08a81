package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/halvdan/onomast/pkg/namegen"
	"github.com/halvdan/onomast/pkg/patternstore"
)

type Server struct {
	cm          *ConfigManager
	db          *sql.DB
	logger      *slog.Logger
	store       *patternstore.Store
	gen         *namegen.Generator
	reserved    *ReservedCache
	sessions    *SessionRegistry
	authAPI     *AuthAPI
	namesAPI    *NamesAPI
	patternsAPI *PatternsAPI
	reservedAPI *ReservedAPI
	statsAPI    *StatsAPI
	serverAPI   *ServerAPI
	apiMux      *http.ServeMux
}

func NewServer(cm *ConfigManager, logger *slog.Logger, db *sql.DB, actionChan chan string) (*Server, error) {
	config := cm.Get()

	// pattern store initialization
	store, err := patternstore.New(config.Server.PatternDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern store: %w", err)
	}

	reserved := NewReservedCache()
	if err = reserved.LoadFromDB(db); err != nil {
		return nil, fmt.Errorf("failed to load reserved names from db: %w", err)
	}

	// engine initialization; the config manager keeps its engine section
	// applied across config updates
	gen := namegen.New(store,
		namegen.WithLogger(logger),
		namegen.WithConfig(*config.Engine),
		namegen.WithReservedChecker(reserved.IsReserved),
	)
	cm.SetGenerator(gen)

	sessions := NewSessionRegistry()

	// api initialization
	authAPI := NewAuthAPI(db, logger)
	statsAPI := NewStatsAPI(db, logger)
	namesAPI := NewNamesAPI(gen, store, sessions, statsAPI, logger)
	patternsAPI := NewPatternsAPI(store, gen, logger)
	reservedAPI := NewReservedAPI(db, logger, reserved)
	serverAPI := NewServerAPI(cm, actionChan, logger)

	// create object, register routes to the mux, and return it
	server := &Server{
		cm:          cm,
		db:          db,
		logger:      logger,
		store:       store,
		gen:         gen,
		reserved:    reserved,
		sessions:    sessions,
		authAPI:     authAPI,
		namesAPI:    namesAPI,
		patternsAPI: patternsAPI,
		reservedAPI: reservedAPI,
		statsAPI:    statsAPI,
		serverAPI:   serverAPI,
		apiMux:      http.NewServeMux(),
	}

	apiMux := http.NewServeMux()

	server.authAPI.RegisterRoutes(apiMux)
	server.namesAPI.RegisterRoutes(apiMux)
	server.patternsAPI.RegisterRoutes(apiMux)
	server.reservedAPI.RegisterRoutes(apiMux)
	server.statsAPI.RegisterRoutes(apiMux)
	server.serverAPI.RegisterRoutes(apiMux)

	// Make sure api functions must pass through authentication first
	authedAPI := server.authAPI.Authenticate(apiMux)
	// ... except for the health check, which is unauthed so something like docker can use it
	server.apiMux.HandleFunc("/api/health", server.serverAPI.handleHealthCheck)

	server.apiMux.Handle("/api/", authedAPI)

	return server, nil
}
