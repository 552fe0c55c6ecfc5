package analysis

import (
	"encoding/json"
	"time"
)

// Known analysis method identifiers
const (
	MethodClustering = "clustering"
	MethodPrediction = "prediction"
	MethodTimeseries = "timeseries"
	MethodAnomaly    = "anomaly"
	MethodStatistics = "statistics"
)

// Reserved payload keys passed through to interpretations verbatim
const (
	PayloadInsights        = "insights"
	PayloadRecommendations = "recommendations"
)

// DatasetDescriptor describes one dataset available for analysis.
// Descriptors are immutable once fetched; refresh by re-querying the catalog.
type DatasetDescriptor struct {
	Name          string   `json:"name"`
	DocumentCount int      `json:"document_count"`
	NumericFields []string `json:"numeric_fields"`
	SampleFields  []string `json:"sample_fields"`

	// Profiles is filled only by catalogs that can see raw values (spreadsheets)
	Profiles map[string]FieldProfile `json:"profiles,omitempty"`
}

// FieldProfile holds summary statistics for one numeric column
type FieldProfile struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
}

// MethodDescriptor describes an analysis method and its declared parameters
type MethodDescriptor struct {
	ID              string               `json:"id"`
	DisplayName     string               `json:"display_name"`
	Description     string               `json:"description"`
	ParameterSchema map[string]ParamSpec `json:"parameter_schema"`
}

// ParamSpec is one entry of a method's parameter schema.
// Options is non-empty iff Kind is KindEnum.
type ParamSpec struct {
	Kind        ParamKind  `json:"kind"`
	Default     ParamValue `json:"default"`
	Description string     `json:"description"`
	Options     []string   `json:"options,omitempty"`
}

// AnalysisRequest is the frozen unit submitted to the job client
type AnalysisRequest struct {
	MethodID    string       `json:"analysis_type"`
	DatasetName string       `json:"collection_name"`
	Parameters  ParameterSet `json:"parameters"`
	SaveResult  bool         `json:"save_analysis"`
	Tags        []string     `json:"tags"`
}

// NewAnalysisRequest builds a request from a private copy of params so later
// form edits never reach an in-flight job.
func NewAnalysisRequest(methodID, datasetName string, params ParameterSet, tags []string, save bool) AnalysisRequest {
	t := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		t = append(t, tag)
	}
	return AnalysisRequest{
		MethodID:    methodID,
		DatasetName: datasetName,
		Parameters:  params.Clone(),
		SaveResult:  save,
		Tags:        t,
	}
}

// AnalysisResult is the typed outcome of a remote job. Payload is method-specific
// and opaque apart from the reserved insight/recommendation keys.
type AnalysisResult struct {
	MethodID       string            `json:"analysis_type"`
	DatasetName    string            `json:"collection_name"`
	RecordCount    int               `json:"record_count"`
	Payload        map[string]any    `json:"results"`
	Visualizations []json.RawMessage `json:"visualizations"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Interpretation is the human-readable summary derived from an AnalysisResult
type Interpretation struct {
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// JobError carries a human-readable remote execution failure
type JobError struct {
	Message string
}

func (e *JobError) Error() string {
	return e.Message
}

// NewJobError creates a JobError, substituting a generic message for blank input
func NewJobError(message string) *JobError {
	if message == "" {
		message = "analysis failed"
	}
	return &JobError{Message: message}
}
