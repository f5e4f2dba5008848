// gadgetd serves the gadget inventory API.
//
// Operatives register and log in for a bearer token, then list, create,
// update, decommission and self-destruct gadgets. Lifecycle events are
// streamed over WebSocket and optionally mirrored to MQTT and InfluxDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nerrad567/gadgetd/internal/api"
	"github.com/nerrad567/gadgetd/internal/auth"
	"github.com/nerrad567/gadgetd/internal/gadget"
	"github.com/nerrad567/gadgetd/internal/infrastructure/config"
	"github.com/nerrad567/gadgetd/internal/infrastructure/database"
	"github.com/nerrad567/gadgetd/internal/infrastructure/influxdb"
	"github.com/nerrad567/gadgetd/internal/infrastructure/logging"
	"github.com/nerrad567/gadgetd/internal/infrastructure/mqtt"
	"github.com/nerrad567/gadgetd/migrations"
)

// Version information, set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configEnvVar      = "GADGETD_CONFIG"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds parsed command-line flags.
type options struct {
	configPath  string
	showVersion bool
}

// parseFlags parses args. The config path falls back to $GADGETD_CONFIG
// and then to configs/config.yaml.
func parseFlags(args []string) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("gadgetd", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	fs.BoolVarP(&opts.showVersion, "version", "v", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.configPath == "" {
		opts.configPath = getConfigPath()
	}
	return opts, nil
}

func getConfigPath() string {
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}

// run wires the application and blocks until ctx is cancelled.
func run(ctx context.Context, args []string) error { //nolint:gocognit,gocyclo // startup sequence
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Printf("gadgetd %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	log := logging.Default()
	log.Info("starting gadgetd", "version", version, "commit", commit, "build_date", date)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", opts.configPath, "level", cfg.Logging.Level)
	if cfg.UsingDevSecret() {
		log.Warn("using development JWT secret; set GADGETD_JWT_SECRET before deploying")
	}

	db, err := database.Open(ctx, database.Config{
		Driver:      cfg.Database.Driver,
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
	log.Info("database connected", "path", db.Path(), "driver", db.Driver())

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	authSvc := auth.NewService(
		auth.NewUserRepository(db.DB),
		auth.NewHasher(cfg.Security.BcryptCost),
		auth.NewTokenService(cfg.Security.JWT.Secret, cfg.TokenTTL()),
	)

	hub := api.NewHub(cfg.WebSocket, log)
	fanout := api.NewFanout(hub, log)

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		fanout.WithMQTT(mqttClient)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"prefix", mqttClient.Topics().Prefix(),
		)
	} else {
		log.Info("MQTT disabled")
	}

	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		influxClient.SetOnError(func(writeErr error) {
			log.Error("InfluxDB write error", "error", writeErr)
		})
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		fanout.WithInflux(influxClient)
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	engine := gadget.NewEngine(
		gadget.NewSQLiteRepository(db.DB),
		gadget.WithCodeTTL(cfg.SelfDestructCodeTTL()),
		gadget.WithLogger(log.With("component", "gadget")),
		gadget.WithNotifier(fanout),
	)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go engine.Run(runCtx)
	go hub.Run(runCtx)

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Auth:     authSvc,
		Gadgets:  engine,
		Hub:      hub,
		Database: db,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(runCtx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("gadgetd ready", "address", server.Addr())

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}
