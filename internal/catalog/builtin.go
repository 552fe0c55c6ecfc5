// Package catalog provides a static method and dataset catalog used when the
// analysis service does not publish its own, and in tests.
package catalog

import (
	"context"
	"slices"

	"goanalytics/domain/analysis"
)

func intParam(def int, description string) analysis.ParamSpec {
	return analysis.ParamSpec{Kind: analysis.KindInteger, Default: analysis.IntParam(def), Description: description}
}

func fieldParam(def, description string) analysis.ParamSpec {
	return analysis.ParamSpec{Kind: analysis.KindString, Default: analysis.StringParam(def), Description: description}
}

// BuiltinMethods returns the methods the analysis service ships with
func BuiltinMethods() map[string]analysis.MethodDescriptor {
	return map[string]analysis.MethodDescriptor{
		analysis.MethodClustering: {
			ID:          analysis.MethodClustering,
			DisplayName: "Clustering",
			Description: "Groups similar records with k-means",
			ParameterSchema: map[string]analysis.ParamSpec{
				"n_clusters":  intParam(5, "Number of clusters"),
				"sample_size": intParam(1000, "Records sampled for the analysis"),
			},
		},
		analysis.MethodPrediction: {
			ID:          analysis.MethodPrediction,
			DisplayName: "Prediction",
			Description: "Forecasts a numeric field with a regression model",
			ParameterSchema: map[string]analysis.ParamSpec{
				"target_col":  fieldParam("value", "Field to predict"),
				"days_ahead":  intParam(30, "Forecast horizon in days"),
				"sample_size": intParam(1000, "Records sampled for training"),
			},
		},
		analysis.MethodTimeseries: {
			ID:          analysis.MethodTimeseries,
			DisplayName: "Time Series",
			Description: "Decomposes a field over time into trend and seasonality",
			ParameterSchema: map[string]analysis.ParamSpec{
				"date_col":    fieldParam("date", "Timestamp field"),
				"value_col":   fieldParam("value", "Measured field"),
				"sample_size": intParam(2000, "Records sampled for the analysis"),
			},
		},
		analysis.MethodAnomaly: {
			ID:          analysis.MethodAnomaly,
			DisplayName: "Anomaly Detection",
			Description: "Flags records that deviate from the bulk of the data",
			ParameterSchema: map[string]analysis.ParamSpec{
				"method": {
					Kind:        analysis.KindEnum,
					Default:     analysis.EnumParam("isolation"),
					Description: "Detection algorithm",
					Options:     []string{"isolation", "lof", "zscore"},
				},
				"sample_size": intParam(1000, "Records sampled for the analysis"),
			},
		},
		analysis.MethodStatistics: {
			ID:              analysis.MethodStatistics,
			DisplayName:     "Descriptive Statistics",
			Description:     "Summarizes every numeric field",
			ParameterSchema: map[string]analysis.ParamSpec{},
		},
	}
}

// Static serves fixed method and dataset lists
type Static struct {
	methods  map[string]analysis.MethodDescriptor
	datasets []analysis.DatasetDescriptor
}

// NewStatic creates a catalog over the given datasets and the built-in methods
func NewStatic(datasets ...analysis.DatasetDescriptor) *Static {
	return &Static{methods: BuiltinMethods(), datasets: slices.Clone(datasets)}
}

// ListMethods returns a fresh copy of the built-in methods
func (s *Static) ListMethods(ctx context.Context) (map[string]analysis.MethodDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]analysis.MethodDescriptor, len(s.methods))
	for id, m := range s.methods {
		out[id] = m
	}
	return out, nil
}

// ListDatasets returns the configured datasets in order
func (s *Static) ListDatasets(ctx context.Context) ([]analysis.DatasetDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]analysis.DatasetDescriptor{}, s.datasets...), nil
}
