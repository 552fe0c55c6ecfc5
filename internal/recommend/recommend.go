// Package recommend derives default analysis parameters from dataset statistics.
package recommend

import (
	"math"

	"goanalytics/domain/analysis"
)

// Field names used when a dataset exposes no suitable numeric column
const (
	FallbackValueField = "value"
	DateField          = "date"
)

// Sample size caps. The per-method values are empirical; keep them literal.
const (
	defaultSampleCap    = 1000
	timeseriesSampleCap = 2000
	defaultForecastDays = 30
	minClusters         = 3
	maxClusters         = 10
	docsPerCluster      = 100
	defaultAnomalyModel = "isolation"
)

// Recommend returns default parameters for running methodID against ds.
// It is total: unknown methods yield an empty set the caller fills in manually.
func Recommend(methodID string, ds analysis.DatasetDescriptor) analysis.ParameterSet {
	params := analysis.ParameterSet{}
	docs := ds.DocumentCount
	if docs < 0 {
		docs = 0
	}

	switch methodID {
	case analysis.MethodClustering:
		params["n_clusters"] = analysis.IntParam(ClusterCount(docs))
		params["sample_size"] = analysis.IntParam(min(docs, defaultSampleCap))
	case analysis.MethodPrediction:
		params["target_col"] = analysis.StringParam(firstNumeric(ds))
		params["days_ahead"] = analysis.IntParam(defaultForecastDays)
		params["sample_size"] = analysis.IntParam(min(docs, defaultSampleCap))
	case analysis.MethodTimeseries:
		params["date_col"] = analysis.StringParam(DateField)
		params["value_col"] = analysis.StringParam(firstNumeric(ds))
		params["sample_size"] = analysis.IntParam(min(docs, timeseriesSampleCap))
	case analysis.MethodAnomaly:
		params["method"] = analysis.EnumParam(defaultAnomalyModel)
		params["sample_size"] = analysis.IntParam(min(docs, defaultSampleCap))
	}

	return params
}

// ClusterCount scales the cluster count with the square root of the dataset size,
// clamped to [3, 10].
func ClusterCount(documentCount int) int {
	if documentCount <= 0 {
		return minClusters
	}
	n := int(math.Floor(math.Sqrt(float64(documentCount) / docsPerCluster)))
	return max(minClusters, min(n, maxClusters))
}

func firstNumeric(ds analysis.DatasetDescriptor) string {
	if len(ds.NumericFields) == 0 {
		return FallbackValueField
	}
	return ds.NumericFields[0]
}
