package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/wolfeidau/tenantschema/internal/telemetry"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestBootstrapper_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics := telemetry.NewMetrics(provider)

	db := newFakeDB(TableUsers)
	_, err := New(db, WithMetrics(metrics)).Run(context.Background())
	require.NoError(t, err)

	failing := newFakeDB(TableUsers)
	failing.failOn = "organization_users"
	failing.failErr = errors.New("boom")
	_, err = New(failing, WithMetrics(metrics)).Run(context.Background())
	require.Error(t, err)

	sums := collectSums(t, reader)
	require.Equal(t, int64(3), sums["tenantschema.bootstrap.statements.applied.total"])
	require.Equal(t, int64(2), sums["tenantschema.bootstrap.runs.total"])
	require.Equal(t, int64(1), sums["tenantschema.bootstrap.failures.total"])
}
