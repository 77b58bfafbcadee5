// Fleet Core - IoT Fleet Management Platform
//
// This is the main entry point for the Fleet Core application. Fleet
// Core manages a fleet of field controllers over MQTT: device and
// location registry, schedule synchronisation, alerting, and a REST +
// WebSocket API for the operator dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/cobaltfleet/fleet-core/migrations"

	"github.com/cobaltfleet/fleet-core/internal/alert"
	"github.com/cobaltfleet/fleet-core/internal/api"
	"github.com/cobaltfleet/fleet-core/internal/auth"
	"github.com/cobaltfleet/fleet-core/internal/device"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/config"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/database"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/influxdb"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/logging"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/mqtt"
	"github.com/cobaltfleet/fleet-core/internal/location"
	"github.com/cobaltfleet/fleet-core/internal/schedule"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Fleet Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	deviceRepo := device.NewSQLiteRepository(db.DB)
	locationRepo := location.NewSQLiteRepository(db.DB)
	alertRepo := alert.NewSQLiteRepository(db.DB)
	userRepo := auth.NewUserRepository(db.DB)

	// Seed the initial admin account on a fresh database
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin user: %w", seedErr)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// WebSocket hub is created up front so the schedule manager and
	// alert notifier can broadcast through it; the API server adopts it.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	notifier := alert.NewNotifier(alertRepo, log, hub)

	// Schedule synchronisation engine
	managerCfg := schedule.ManagerConfig{
		Transport:  schedule.NewMQTTTransport(mqttClient, byte(cfg.MQTT.QoS)),
		Subscriber: mqttClient,
		Timeout:    cfg.GetSyncTimeout(),
		Logger:     log.With("component", "schedule"),
		Events:     hub,
		Alerts:     notifier,
	}
	if influxClient != nil {
		managerCfg.Telemetry = influxClient
	}
	scheduleManager := schedule.NewManager(managerCfg)
	if startErr := scheduleManager.Start(); startErr != nil {
		return fmt.Errorf("starting schedule manager: %w", startErr)
	}
	defer func() {
		log.Info("stopping schedule manager")
		scheduleManager.Stop()
	}()
	log.Info("schedule manager started", "sync_timeout", cfg.GetSyncTimeout())

	// Device presence tracking from retained status topics
	presence := device.NewPresenceTracker(deviceRepo, mqttClient, log.With("component", "presence"), hub)
	if startErr := presence.Start(); startErr != nil {
		return fmt.Errorf("starting presence tracker: %w", startErr)
	}
	defer func() {
		log.Info("stopping presence tracker")
		presence.Stop()
	}()

	// Device telemetry relay into InfluxDB
	if influxClient != nil {
		telemetry := device.NewTelemetryRelay(deviceRepo, mqttClient, log.With("component", "telemetry"), influxClient)
		if startErr := telemetry.Start(); startErr != nil {
			return fmt.Errorf("starting telemetry relay: %w", startErr)
		}
		defer func() {
			log.Info("stopping telemetry relay")
			telemetry.Stop()
		}()
	}

	// API server
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Security:     cfg.Security,
		Logger:       log.With("component", "api"),
		DeviceRepo:   deviceRepo,
		LocationRepo: locationRepo,
		AlertRepo:    alertRepo,
		UserRepo:     userRepo,
		Schedules:    scheduleManager,
		ExternalHub:  hub,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, presence tracker, schedule manager, InfluxDB (if
	// enabled), MQTT, database.

	log.Info("Fleet Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses FLEETCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FLEETCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
