package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goanalytics/adapters/excel"
	"goanalytics/internal"
	"goanalytics/internal/catalog"
	"goanalytics/internal/config"
	"goanalytics/internal/notify"
)

func testConfig(source string) *config.Config {
	return &config.Config{
		Analytics:     config.AnalyticsConfig{BaseURL: "http://analytics.invalid"},
		Catalog:       config.CatalogConfig{Source: source, ExcelFile: "datasets.xlsx", Concurrency: 2},
		Session:       config.SessionConfig{HistoryCapacity: 5},
		Notifications: config.NotificationConfig{Enabled: false},
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestInitCatalogs_SelectsSource(t *testing.T) {
	ctx := context.Background()
	logger := internal.NewLogger(internal.LogLevelError)

	c, err := New(testConfig(config.CatalogBuiltin), logger)
	require.NoError(t, err)
	require.NoError(t, c.InitCatalogs(ctx))
	assert.IsType(t, &catalog.Static{}, c.Datasets)
	assert.Equal(t, "http://analytics.invalid", c.Client.BaseURL())

	c, _ = New(testConfig(config.CatalogExcel), logger)
	require.NoError(t, c.InitCatalogs(ctx))
	assert.IsType(t, &excel.Catalog{}, c.Datasets)
	assert.Same(t, c.Client, c.Methods)

	c, _ = New(testConfig(config.CatalogPostgres), logger)
	assert.Error(t, c.InitCatalogs(ctx))
}

func TestInitWorkbench_Builtin(t *testing.T) {
	t.Cleanup(notify.Process().Reset)

	c, err := New(testConfig(config.CatalogBuiltin), internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	require.NoError(t, c.InitWorkbench(context.Background()))
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	assert.Len(t, c.Workbench.Methods(), 5)
	assert.Equal(t, notify.StateDenied, c.Permission.State())
	assert.NotNil(t, c.SSEHub)
}
