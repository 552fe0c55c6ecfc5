package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"goanalytics/domain/analysis"
	apperrors "goanalytics/internal/errors"
)

// ListMethods fetches {base}/analytics/methods
func (c *Client) ListMethods(ctx context.Context) (map[string]analysis.MethodDescriptor, error) {
	body, err := c.get(ctx, c.endpoint("methods"))
	if err != nil {
		return nil, apperrors.CatalogError("method", err)
	}
	methods, err := parseMethods(body)
	if err != nil {
		return nil, apperrors.CatalogError("method", err)
	}
	c.log.Debug("loaded %d methods", len(methods))
	return methods, nil
}

// ListDatasets fetches the collection list, then each collection's stats
// with bounded concurrency. Catalog order is preserved.
func (c *Client) ListDatasets(ctx context.Context) ([]analysis.DatasetDescriptor, error) {
	body, err := c.get(ctx, c.endpoint("collections"))
	if err != nil {
		return nil, apperrors.CatalogError("dataset", err)
	}

	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		return nil, apperrors.CatalogError("dataset", fmt.Errorf("collections response is not an array"))
	}

	var datasets []analysis.DatasetDescriptor
	for _, item := range list.Array() {
		name := item.Get("name").String()
		if name == "" {
			continue
		}
		datasets = append(datasets, analysis.DatasetDescriptor{
			Name:          name,
			DocumentCount: int(item.Get("document_count").Int()),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.StatsConcurrency)
	for i := range datasets {
		ds := &datasets[i]
		g.Go(func() error {
			stats, err := c.get(gctx, c.endpoint("collections", ds.Name, "stats"))
			if err != nil {
				return fmt.Errorf("stats for %s: %w", ds.Name, err)
			}
			applyStats(ds, stats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.CatalogError("dataset", err)
	}

	c.log.Debug("loaded %d datasets", len(datasets))
	return datasets, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.CatalogTimeout)
	defer cancel()

	req, err := c.buildRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		var status *statusError
		if errors.As(err, &status) {
			return nil, apperrors.ExternalServiceError("analytics", err)
		}
		return nil, apperrors.WithCode(apperrors.CodeExternalService, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed JSON from %s", endpoint)
	}
	return body, nil
}

func applyStats(ds *analysis.DatasetDescriptor, body []byte) {
	stats := gjson.ParseBytes(body)
	if n := stats.Get("document_count"); n.Exists() {
		ds.DocumentCount = int(n.Int())
	}
	ds.NumericFields = stringArray(stats.Get("numeric_fields"))
	ds.SampleFields = stringArray(stats.Get("sample_fields"))
}

func stringArray(r gjson.Result) []string {
	out := []string{}
	for _, v := range r.Array() {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseMethods(body []byte) (map[string]analysis.MethodDescriptor, error) {
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("methods response is not an object")
	}

	methods := make(map[string]analysis.MethodDescriptor)
	var parseErr error
	doc.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		desc := analysis.MethodDescriptor{
			ID:              id,
			DisplayName:     value.Get("name").String(),
			Description:     value.Get("description").String(),
			ParameterSchema: map[string]analysis.ParamSpec{},
		}
		if desc.DisplayName == "" {
			desc.DisplayName = id
		}

		value.Get("parameters").ForEach(func(pname, pvalue gjson.Result) bool {
			spec, err := parseParamSpec(pvalue)
			if err != nil {
				parseErr = fmt.Errorf("method %s parameter %s: %w", id, pname.String(), err)
				return false
			}
			desc.ParameterSchema[pname.String()] = spec
			return true
		})
		if parseErr != nil {
			return false
		}
		methods[id] = desc
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return methods, nil
}

func parseParamSpec(v gjson.Result) (analysis.ParamSpec, error) {
	options := stringArray(v.Get("options"))

	kind, err := analysis.ParseParamKind(v.Get("type").String(), len(options) > 0)
	if err != nil {
		return analysis.ParamSpec{}, err
	}
	if kind == analysis.KindEnum && len(options) == 0 {
		return analysis.ParamSpec{}, fmt.Errorf("enum parameter declares no options")
	}

	spec := analysis.ParamSpec{
		Kind:        kind,
		Description: v.Get("description").String(),
	}
	if kind == analysis.KindEnum {
		spec.Options = options
	}

	if def := v.Get("default"); def.Exists() && def.Type != gjson.Null {
		var raw analysis.ParamValue
		if err := raw.UnmarshalJSON([]byte(def.Raw)); err != nil {
			return analysis.ParamSpec{}, fmt.Errorf("default: %w", err)
		}
		conformed, err := raw.Conform(spec)
		if err != nil {
			return analysis.ParamSpec{}, fmt.Errorf("default: %w", err)
		}
		spec.Default = conformed
	}
	return spec, nil
}
