package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"goanalytics/domain/analysis"
	"goanalytics/domain/core"
)

// Submit posts req to {base}/analytics/analyze and waits for the result.
// Cancelling ctx abandons the HTTP call and yields core.ErrUserCancelled.
func (c *Client) Submit(ctx context.Context, req analysis.AnalysisRequest) (*analysis.AnalysisResult, error) {
	callCtx := ctx
	if c.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.config.JobTimeout)
		defer cancel()
	}

	httpReq, err := c.buildRequest(callCtx, http.MethodPost, c.endpoint("analyze"), req)
	if err != nil {
		return nil, analysis.NewJobError(err.Error())
	}

	started := time.Now()
	c.log.Debug("submitting %s on %s", req.MethodID, req.DatasetName)

	body, err := c.do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			// The caller's token fired; anything else is a boundary failure
			c.log.Debug("%s on %s cancelled after %s", req.MethodID, req.DatasetName, time.Since(started))
			return nil, core.ErrUserCancelled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, context.DeadlineExceeded
		}
		var se *statusError
		if errors.As(err, &se) {
			c.log.Warn("%s on %s failed: %s", req.MethodID, req.DatasetName, se.message)
			return nil, analysis.NewJobError(se.message)
		}
		c.log.Warn("%s on %s: request failed: %v", req.MethodID, req.DatasetName, err)
		return nil, analysis.NewJobError(fmt.Sprintf("analysis service unreachable: %v", err))
	}

	result, err := parseResult(body, req)
	if err != nil {
		return nil, analysis.NewJobError(err.Error())
	}
	c.log.Info("%s on %s completed in %s (%d records)", req.MethodID, req.DatasetName, time.Since(started).Round(time.Millisecond), result.RecordCount)
	return result, nil
}

// parseResult maps the service response onto AnalysisResult. Missing
// identifiers are taken from the request.
func parseResult(body []byte, req analysis.AnalysisRequest) (*analysis.AnalysisResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("analysis service returned malformed JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("analysis service returned %s, expected an object", doc.Type)
	}

	result := &analysis.AnalysisResult{
		MethodID:    firstString(doc, "analysis_type", req.MethodID),
		DatasetName: firstString(doc, "collection_name", req.DatasetName),
		RecordCount: int(doc.Get("record_count").Int()),
		Payload:     map[string]any{},
	}

	if results := doc.Get("results"); results.IsObject() {
		if err := json.Unmarshal([]byte(results.Raw), &result.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
	}

	for _, v := range doc.Get("visualizations").Array() {
		result.Visualizations = append(result.Visualizations, json.RawMessage(v.Raw))
	}

	if created := doc.Get("created_at"); created.Exists() {
		if t, err := time.Parse(time.RFC3339Nano, created.String()); err == nil {
			result.CreatedAt = t
		}
	}
	return result, nil
}

func firstString(doc gjson.Result, path, fallback string) string {
	if s := doc.Get(path).String(); s != "" {
		return s
	}
	return fallback
}
