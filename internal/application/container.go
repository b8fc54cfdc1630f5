package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	checkapp "github.com/khanhnv2901/assetwatch/internal/application/check"
	"github.com/khanhnv2901/assetwatch/internal/checker"
	"github.com/khanhnv2901/assetwatch/internal/config"
	"github.com/khanhnv2901/assetwatch/internal/domain/check"
	"github.com/khanhnv2901/assetwatch/internal/domain/workbook"
	"github.com/khanhnv2901/assetwatch/internal/infrastructure/messaging/kafka"
	"github.com/khanhnv2901/assetwatch/internal/infrastructure/persistence/json"
	"github.com/khanhnv2901/assetwatch/internal/infrastructure/persistence/sqlite"
	"github.com/khanhnv2901/assetwatch/internal/logging"
	"github.com/khanhnv2901/assetwatch/internal/sink"
	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
)

// Default workbook file names inside the data directory.
const (
	DefaultSQLiteFile = "workbook.db"
	DefaultJSONFile   = "workbook.json"
)

// Container holds all application services and repositories
// This is a simple dependency injection container
type Container struct {
	// Repositories
	Workbook workbook.Repository
	RunRepo  check.Repository

	// Services
	CheckOrchestrator *checkapp.Orchestrator

	producer *kafka.Producer
}

// NewContainer wires the workbook backend, the checkers, the optional Kafka
// mirror and the orchestrator from cfg. dataDir holds the run history and,
// when store.path is empty, the workbook itself.
func NewContainer(ctx context.Context, cfg config.Config, dataDir string, logger *zap.Logger, progress checkapp.ProgressFunc) (*Container, error) {
	logger = logging.OrNop(logger)

	wb, err := OpenWorkbook(ctx, cfg.Store, dataDir)
	if err != nil {
		return nil, err
	}

	runRepo, err := json.NewRunRepository(dataDir)
	if err != nil {
		_ = wb.Close()
		return nil, fmt.Errorf("failed to create run repository: %w", err)
	}

	mapping, err := cfg.FieldMapping()
	if err != nil {
		_ = wb.Close()
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = wb.Close()
		return nil, err
	}

	c := &Container{Workbook: wb, RunRepo: runRepo}

	opts := sink.Options{
		CellCharLimit: cfg.Sink.CellCharLimit,
		MaxAttempts:   cfg.Sink.MaxAttempts,
		WriteInterval: cfg.Pacing.WriteInterval,
		Logger:        logger.Named("sink"),
	}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			_ = wb.Close()
			return nil, fmt.Errorf("failed to create kafka producer: %w", err)
		}
		c.producer = producer
		opts.Mirror = producer
		logger.Info("kafka_mirror_enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	c.CheckOrchestrator, err = checkapp.NewOrchestrator(checkapp.Dependencies{
		Workbook: wb,
		Runs:     runRepo,
		Resolver: checker.NewDNSResolver(cfg.Checks.DNS.Timeout, cfg.Checks.DNS.Nameservers),
		Certs:    checker.NewCertValidator(cfg.Checks.TLSPort, cfg.Checks.TLSTimeout),
		Tracer:   checker.NewRedirectTracer(cfg.Checks.MaxRedirects, cfg.Checks.TraceTimeout),
		Fetcher:  checker.NewContentFetcher(cfg.Checks.FetchTimeout),
		Logger:   logger.Named("orchestrator"),
		Progress: progress,
	}, checkapp.Settings{
		InventoryPage:  cfg.Pages.Inventory,
		ResultPage:     cfg.Pages.Result,
		Mapping:        mapping,
		Backup:         cfg.Backup.Enabled,
		Location:       loc,
		TargetInterval: cfg.Pacing.TargetInterval,
		Sink:           opts,
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// OpenWorkbook opens the backend selected by store.driver.
func OpenWorkbook(ctx context.Context, store config.StoreConfig, dataDir string) (workbook.Repository, error) {
	path := store.Path
	switch store.Driver {
	case config.StoreDriverJSON:
		if path == "" {
			path = filepath.Join(dataDir, DefaultJSONFile)
		}
		repo, err := json.NewWorkbookRepository(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open json workbook: %w", err)
		}
		return repo, nil
	case config.StoreDriverSQLite, "":
		if path == "" {
			path = filepath.Join(dataDir, DefaultSQLiteFile)
		}
		if err := os.MkdirAll(filepath.Dir(path), consts.DefaultDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		repo, err := sqlite.NewWorkbookRepository(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite workbook: %w", err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", store.Driver)
}

// Close releases the workbook and flushes the Kafka mirror.
func (c *Container) Close() error {
	var errs []error
	if c.producer != nil {
		errs = append(errs, c.producer.Close())
	}
	if c.Workbook != nil {
		errs = append(errs, c.Workbook.Close())
	}
	return errors.Join(errs...)
}
