// Package interpret turns raw analysis results into uniform human-readable summaries.
package interpret

import (
	"fmt"
	"strconv"
	"strings"

	"goanalytics/domain/analysis"
)

// Unknown is rendered in place of any payload value the result does not carry
const Unknown = "unknown"

// Interpret summarizes result. It never fails: missing payload values render as Unknown.
func Interpret(result analysis.AnalysisResult) analysis.Interpretation {
	return analysis.Interpretation{
		Summary:         Summarize(result),
		Insights:        stringList(result.Payload[analysis.PayloadInsights]),
		Recommendations: stringList(result.Payload[analysis.PayloadRecommendations]),
	}
}

// Summarize renders the per-method summary line
func Summarize(result analysis.AnalysisResult) string {
	p := result.Payload

	switch result.MethodID {
	case analysis.MethodClustering:
		return fmt.Sprintf("%s groups formed, silhouette score %s",
			lookup(p, "n_clusters"), lookup(p, "silhouette_score"))
	case analysis.MethodPrediction:
		return fmt.Sprintf("model accuracy %s%%", lookup(p, "accuracy_percentage"))
	case analysis.MethodTimeseries:
		return fmt.Sprintf("%s-day analysis, trend %s",
			lookup(p, "days", "period_days"), lookup(p, "direction", "trend_direction", "trend.direction"))
	case analysis.MethodAnomaly:
		return fmt.Sprintf("%s%% of records flagged as anomalous", lookup(p, "anomaly_rate"))
	case analysis.MethodStatistics:
		return fmt.Sprintf("descriptive statistics computed over %d records", result.RecordCount)
	default:
		return fmt.Sprintf("analysis complete, %d records processed", result.RecordCount)
	}
}

// lookup returns the first key present in payload, formatted. Dotted keys
// descend into nested objects.
func lookup(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := dig(payload, key); ok && v != nil {
			return formatValue(v)
		}
	}
	return Unknown
}

func dig(payload map[string]any, key string) (any, bool) {
	var cur any = payload
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return Unknown
		}
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return formatValue(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// stringList passes a reserved sequence through, always returning a non-nil slice
func stringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, formatValue(item))
		}
	}
	return out
}
