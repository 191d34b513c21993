/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the crew scheduling server: configuration,
  dependency wiring, graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (and optional YAML config file)
  2. Open the SQLite store
  3. Build the assignment guard and API handler
  4. Configure the HTTP router
  5. Serve with graceful shutdown

COMMAND-LINE FLAGS:
  -port          HTTP server port (default: 8080)
  -db            SQLite database path (default: floor.db);
                 use ":memory:" for an in-memory database
  -config        optional YAML config file; flags override it
  -shared-slots  allow multiple employees per machine/shift slot

CONFIG FILE (YAML):
  port: 8080
  db: ./data/floor.db
  shared_machine_slots: false

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  in-flight requests, close the database, exit.

SEE ALSO:
  - api/server.go: router configuration
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forge/crew-engine/api"
	"github.com/forge/crew-engine/engine"
	"github.com/forge/crew-engine/store/sqlite"
)

type fileConfig struct {
	Port               int    `yaml:"port"`
	DB                 string `yaml:"db"`
	SharedMachineSlots bool   `yaml:"shared_machine_slots"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "floor.db", "SQLite database path")
	configPath := flag.String("config", "", "optional YAML config file")
	sharedSlots := flag.Bool("shared-slots", false, "allow multiple employees per machine/shift slot")
	flag.Parse()

	// File config provides defaults; explicit flags win.
	if *configPath != "" {
		fc, err := loadConfigFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["port"] && fc.Port != 0 {
			*port = fc.Port
		}
		if !set["db"] && fc.DB != "" {
			*dbPath = fc.DB
		}
		if !set["shared-slots"] {
			*sharedSlots = fc.SharedMachineSlots
		}
	}

	cfg := engine.Config{SharedMachineSlots: *sharedSlots}

	store, err := sqlite.New(*dbPath, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	guard := engine.NewGuard(cfg, store, store)
	handler := api.NewHandler(store, store, guard)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Crew scheduling server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
