package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"filadash/internal/handlers"
	"filadash/internal/logger"
	"filadash/internal/repository"
	"filadash/internal/server"
	"filadash/internal/service"

	"github.com/spf13/viper"
)

const defaultSimTick = 1 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, serviceConfig(log), log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the simulated device and the outcome recorder
	go services.Simulator.Run(ctx, simTick())
	go services.AMS.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// serviceConfig assembles service-level settings from the config file.
func serviceConfig(log *logger.Logger) service.Config {
	key := viper.GetString("auth.signing_key")
	if key == "" {
		log.Fatalw("auth.signing_key is required in config")
	}
	return service.Config{
		JWTSigningKey: key,
		Extruders:     extruderMap(log),
	}
}

// extruderMap reads the optional unit→extruder wiring for dual-nozzle
// printers. Keys and values are both integers in the config file.
func extruderMap(log *logger.Logger) map[int]int {
	raw := viper.GetStringMapString("ams.extruders")
	if len(raw) == 0 {
		return nil
	}
	out := make(map[int]int, len(raw))
	for k, v := range raw {
		unit, err := strconv.Atoi(k)
		if err != nil {
			log.Fatalw("invalid feed unit id in ams.extruders", "key", k)
		}
		extruder, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalw("invalid extruder index in ams.extruders", "key", k, "value", v)
		}
		out[unit] = extruder
	}
	return out
}

// simTick reads the simulated device tick interval, defaulting to 1s.
func simTick() time.Duration {
	if d := viper.GetDuration("simulator.tick"); d > 0 {
		return d
	}
	return defaultSimTick
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "filadash.db")
		dbPath = "filadash.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
