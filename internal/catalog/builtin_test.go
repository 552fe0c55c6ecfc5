package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goanalytics/domain/analysis"
	"goanalytics/internal/recommend"
)

func TestBuiltinMethods_SchemasAreConsistent(t *testing.T) {
	for id, m := range BuiltinMethods() {
		assert.Equal(t, id, m.ID)
		assert.NotEmpty(t, m.DisplayName)
		for name, spec := range m.ParameterSchema {
			if spec.Kind == analysis.KindEnum {
				assert.NotEmpty(t, spec.Options, "%s.%s", id, name)
			} else {
				assert.Empty(t, spec.Options, "%s.%s", id, name)
			}
			_, err := spec.Default.Conform(spec)
			assert.NoError(t, err, "%s.%s default", id, name)
		}
	}
}

func TestBuiltinMethods_AcceptRecommendations(t *testing.T) {
	ds := analysis.DatasetDescriptor{Name: "sales", DocumentCount: 50000, NumericFields: []string{"amount"}}
	methods := BuiltinMethods()

	for id, m := range methods {
		for name, value := range recommend.Recommend(id, ds) {
			spec, ok := m.ParameterSchema[name]
			require.True(t, ok, "%s recommends undeclared %s", id, name)
			_, err := value.Conform(spec)
			assert.NoError(t, err, "%s.%s", id, name)
		}
	}
}

func TestStatic_ReturnsCopies(t *testing.T) {
	c := NewStatic(analysis.DatasetDescriptor{Name: "a"}, analysis.DatasetDescriptor{Name: "b"})
	ctx := context.Background()

	ds, err := c.ListDatasets(ctx)
	require.NoError(t, err)
	ds[0].Name = "mutated"

	again, _ := c.ListDatasets(ctx)
	assert.Equal(t, "a", again[0].Name)

	methods, err := c.ListMethods(ctx)
	require.NoError(t, err)
	delete(methods, analysis.MethodClustering)
	again2, _ := c.ListMethods(ctx)
	assert.Contains(t, again2, analysis.MethodClustering)
}

func TestStatic_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStatic().ListDatasets(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
