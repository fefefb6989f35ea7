package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/graft/config"
	presetrepo "github.com/Ramsey-B/graft/internal/repositories/preset"
	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/events"
	graftkafka "github.com/Ramsey-B/graft/pkg/kafka"
	"github.com/Ramsey-B/graft/pkg/matching"
	"github.com/Ramsey-B/graft/pkg/middleware"
	"github.com/Ramsey-B/graft/pkg/processor"
	"github.com/Ramsey-B/graft/pkg/routes/health"
	matchroute "github.com/Ramsey-B/graft/pkg/routes/match"
	presetroute "github.com/Ramsey-B/graft/pkg/routes/preset"
	"github.com/Ramsey-B/graft/pkg/startup"
	"github.com/Ramsey-B/graft/pkg/tracing"
	"github.com/Ramsey-B/graft/pkg/tracing/exporters"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}

	ctx := context.Background()

	tracerProvider, err := newTracerProvider(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		os.Exit(1)
	}

	container, err := ectoinject.NewDIContainer()
	if err != nil {
		logger.WithError(err).Error("Failed to create DI container")
		os.Exit(1)
	}
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
		logger.WithError(err).Error("Failed to register logger")
		os.Exit(1)
	}

	e := newServer(cfg, logger)

	var (
		db      database.DB
		repo    *presetrepo.Repository
		emitter *events.Emitter
		service *matching.Service
		checker *health.Checker
	)

	startupService := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	startupService.AddDependency(&dependency{
		name: "database",
		start: func(ctx context.Context) error {
			dsn := fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName,
				cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
			)

			if err := runMigrations(cfg, logger, dsn); err != nil {
				return err
			}

			conn, err := database.NewConnection(ctx, database.ConnectionConfig{
				DSN:             dsn,
				MaxOpenConns:    cfg.DatabaseMaxOpenConns,
				MaxIdleConns:    cfg.DatabaseMaxIdleConns,
				ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
			}, logger)
			if err != nil {
				return err
			}
			db = conn

			repo = presetrepo.NewRepository(db, logger)

			if err := ectoinject.RegisterInstance[database.DB](container, db); err != nil {
				return err
			}
			return ectoinject.RegisterInstance[*presetrepo.Repository](container, repo)
		},
		stop: func(ctx context.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
	})

	var producer *graftkafka.Producer
	startupService.AddDependency(&dependency{
		name: "kafka",
		start: func(ctx context.Context) error {
			if !cfg.KafkaProducerEnabled {
				logger.WithContext(ctx).Info("Kafka producer disabled, events will not be emitted")
				return nil
			}

			producer = graftkafka.NewProducer(graftkafka.ProducerConfig{
				Brokers:      cfg.KafkaBrokers,
				Topic:        cfg.KafkaEventsTopic,
				BatchSize:    cfg.KafkaBatchSize,
				BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
				RequiredAcks: cfg.KafkaRequiredAcks,
				Compression:  cfg.KafkaCompression,
			}, logger)
			emitter = events.NewEmitter(producer, logger)

			return ectoinject.RegisterInstance[*events.Emitter](container, emitter)
		},
		stop: func(ctx context.Context) error {
			if producer == nil {
				return nil
			}
			return producer.Close()
		},
	})

	startupService.AddDependency(&dependency{
		name:      "matching-service",
		dependsOn: []string{"database", "kafka"},
		start: func(ctx context.Context) error {
			engine := matching.NewEngine(logger, matching.EngineConfig{
				MaxEntities:         cfg.MatchMaxEntities,
				MaxOptimalDimension: cfg.MatchMaxOptimalDimension,
			})

			// A nil *events.Emitter must stay a nil interface so the
			// service skips emission entirely.
			var publisher matching.EventPublisher
			if emitter != nil {
				publisher = emitter
			}
			service = matching.NewService(logger, engine, repo, publisher)
			return ectoinject.RegisterInstance[*matching.Service](container, service)
		},
		stop: func(ctx context.Context) error { return nil },
	})

	startupService.AddDependency(&dependency{
		name:      "http-server",
		dependsOn: []string{"matching-service"},
		start: func(ctx context.Context) error {
			checker = health.NewChecker(db, version)
			checker.RegisterRoutes(e)

			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("HTTP server stopped unexpectedly")
				}
			}()
			return nil
		},
		stop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})

	var consumer *graftkafka.Consumer
	startupService.AddDependency(&dependency{
		name:      "kafka-consumer",
		dependsOn: []string{"matching-service"},
		start: func(ctx context.Context) error {
			if !cfg.KafkaConsumerEnabled {
				logger.WithContext(ctx).Info("Kafka consumer disabled, match requests arrive over HTTP only")
				return nil
			}

			proc := processor.NewProcessor(logger, service)
			consumer = graftkafka.NewConsumer(graftkafka.ConsumerConfig{
				Brokers:       cfg.KafkaBrokers,
				Topic:         cfg.KafkaRequestsTopic,
				ConsumerGroup: cfg.KafkaConsumerGroup,
			}, logger, proc.ProcessMessage)
			return consumer.Start(ctx)
		},
		stop: func(ctx context.Context) error {
			if consumer == nil {
				return nil
			}
			return consumer.Stop()
		},
	})

	if err := startupService.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	checker.SetReady(true)
	logger.WithFields(map[string]any{"port": cfg.Port, "version": version}).Info("graft api started")

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-signalCtx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := startupService.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to flush tracer")
	}
}

// dependency adapts a pair of closures to the startup interface
type dependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *dependency) GetName() string                 { return d.name }
func (d *dependency) DependsOn() []string             { return d.dependsOn }
func (d *dependency) Start(ctx context.Context) error { return d.start(ctx) }
func (d *dependency) Stop(ctx context.Context) error  { return d.stop(ctx) }

func newLogger(cfg config.Config) (ectologger.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}

func newTracerProvider(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	if cfg.TracingEnabled {
		otlp, err := exporters.NewOTLP(ctx, exporters.Options{
			Endpoint: cfg.TracingOTLPEndpoint,
			Protocol: cfg.TracingOTLPProtocol,
			Insecure: cfg.TracingOTLPInsecure,
		})
		if err != nil {
			return nil, err
		}
		exporter = otlp
	} else {
		exporter = &exporters.NoopExporter{}
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.AppName),
			attribute.String("service.version", version),
		)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracing.SetTracer(provider.Tracer(cfg.AppName))
	return provider, nil
}

func newServer(cfg config.Config, logger ectologger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Validator = &requestValidator{validate: validator.New()}

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	api := e.Group("/api/v1")
	matchroute.Register(api.Group("/match"))
	presetroute.Register(api.Group("/presets"))

	return e
}

// requestValidator exposes go-playground validation through echo's
// c.Validate
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func runMigrations(cfg config.Config, logger ectologger.Logger, dsn string) error {
	conn, err := sql.Open(cfg.DatabaseDriver, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return err
	}

	migrationService := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})
	return migrationService.Migrate(cfg.DatabaseName, driver)
}
