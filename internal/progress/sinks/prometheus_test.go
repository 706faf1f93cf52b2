package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/shelfscan/shelfscan/internal/catalog"
	"github.com/shelfscan/shelfscan/internal/progress"
)

func TestPrometheusSinkRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	runID := uuid.New()
	events := []progress.Event{
		{RunID: runID, TS: time.Now(), Completed: 1, Total: 6, Catalog: "utah", Availability: catalog.Available, Dur: 2 * time.Second},
		{RunID: runID, TS: time.Now(), Completed: 2, Total: 6, Catalog: "utah", Availability: catalog.NotFound, Dur: time.Second},
		{RunID: runID, TS: time.Now(), Completed: 3, Total: 6, Catalog: "hawaii", Availability: catalog.Available, Dur: 3 * time.Second},
	}
	for _, evt := range events {
		require.NoError(t, sink.Record(context.Background(), evt))
	}

	require.Equal(t, 1.0, testutil.ToFloat64(sink.lookupsCompleted.WithLabelValues("utah", string(catalog.Available))))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.lookupsCompleted.WithLabelValues("utah", string(catalog.NotFound))))
	require.Equal(t, 6.0, testutil.ToFloat64(sink.lookupsPlanned))
	require.Equal(t, 3.0, testutil.ToFloat64(sink.lookupsDone))
	require.Equal(t, 2, testutil.CollectAndCount(sink.lookupDuration, "shelfscan_lookup_duration_seconds"))
}

func TestPrometheusSinkDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}

func TestPrometheusSinkEmptyCatalogLabel(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	require.NoError(t, sink.Record(context.Background(), progress.Event{Availability: catalog.Unknown}))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.lookupsCompleted.WithLabelValues("unknown", string(catalog.Unknown))))
}
