package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"goanalytics/adapters/excel"
	"goanalytics/adapters/postgres"
	"goanalytics/adapters/remote"
	"goanalytics/app"
	"goanalytics/internal"
	"goanalytics/internal/api"
	"goanalytics/internal/catalog"
	"goanalytics/internal/config"
	"goanalytics/internal/errors"
	"goanalytics/internal/notify"
	"goanalytics/internal/session"
	"goanalytics/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB     *sqlx.DB
	Client *remote.Client

	// Catalogs
	Methods  ports.MethodCatalog
	Datasets ports.DatasetCatalog

	// Notifications
	SSEHub     *api.SSEHub
	Permission *notify.Permission
	Sink       ports.NotificationSink

	Workbench *app.WorkbenchService
}

// New creates a container from configuration without touching the network
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}
	return &Container{Config: cfg, Logger: logger}, nil
}

// InitClient configures the process-wide remote client and takes a handle on it
func (c *Container) InitClient() {
	remote.Configure(remote.ClientConfig{
		BaseURL:          c.Config.Analytics.BaseURL,
		Token:            c.Config.Analytics.Token,
		JobTimeout:       c.Config.Analytics.JobTimeout,
		StatsConcurrency: c.Config.Catalog.Concurrency,
	})
	remote.ResetDefault()
	c.Client = remote.Default()
}

// InitCatalogs selects the method and dataset catalogs for CATALOG_SOURCE.
// Methods come from the service unless the source is builtin.
func (c *Container) InitCatalogs(ctx context.Context) error {
	if c.Client == nil {
		c.InitClient()
	}

	switch c.Config.Catalog.Source {
	case config.CatalogRemote:
		c.Methods, c.Datasets = c.Client, c.Client
	case config.CatalogBuiltin:
		static := catalog.NewStatic()
		c.Methods, c.Datasets = static, static
	case config.CatalogExcel:
		c.Methods = c.Client
		c.Datasets = excel.NewCatalog(c.Config.Catalog.ExcelFile, c.Logger)
	case config.CatalogPostgres:
		db, err := c.OpenDatabase(ctx)
		if err != nil {
			return err
		}
		pg := postgres.NewDatasetCatalog(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		c.Methods, c.Datasets = c.Client, pg
	default:
		return errors.ConfigInvalid("unknown catalog source " + c.Config.Catalog.Source)
	}
	c.Logger.Info("[Container] catalog source: %s", c.Config.Catalog.Source)
	return nil
}

// OpenDatabase connects once to DATABASE_URL
func (c *Container) OpenDatabase(ctx context.Context) (*sqlx.DB, error) {
	if c.DB != nil {
		return c.DB, nil
	}
	if c.Config.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	c.DB = db
	return db, nil
}

// InitNotifications builds the SSE hub and the permission-gated announcer.
// The process-wide permission is seeded from NOTIFICATIONS_ENABLED.
func (c *Container) InitNotifications() {
	c.SSEHub = api.NewSSEHub(c.Logger)
	c.Permission = notify.Process()
	c.Permission.Set(c.Config.Notifications.Enabled)
	c.Sink = notify.Fanout{
		c.SSEHub,
		notify.NewGate(notify.NewLogSink(c.Logger), c.Permission),
	}
}

// InitWorkbench loads the catalogs and creates the session workbench
func (c *Container) InitWorkbench(ctx context.Context) error {
	if c.Methods == nil || c.Datasets == nil {
		if err := c.InitCatalogs(ctx); err != nil {
			return err
		}
	}
	if c.Sink == nil {
		c.InitNotifications()
	}

	wb, err := app.NewWorkbenchService(ctx, app.WorkbenchConfig{
		Methods:   c.Methods,
		Datasets:  c.Datasets,
		JobClient: c.Client,
		Sink:      c.Sink,
		Logger:    c.Logger,
		Session: session.Options{
			HistoryCapacity: c.Config.Session.HistoryCapacity,
			Tags:            c.Config.Session.Tags,
			SaveResults:     c.Config.Session.SaveAnalysis,
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize workbench")
	}
	c.Workbench = wb
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Workbench != nil {
		c.Workbench.Shutdown()
	}
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
