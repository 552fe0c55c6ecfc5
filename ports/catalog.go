package ports

import (
	"context"

	"goanalytics/domain/analysis"
)

// DatasetCatalog provides read-only access to datasets available for analysis
type DatasetCatalog interface {
	// ListDatasets returns descriptors in catalog order
	ListDatasets(ctx context.Context) ([]analysis.DatasetDescriptor, error)
}

// MethodCatalog provides read-only access to analysis methods and their schemas
type MethodCatalog interface {
	// ListMethods returns methods keyed by method ID
	ListMethods(ctx context.Context) (map[string]analysis.MethodDescriptor, error)
}
