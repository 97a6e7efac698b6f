package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-fetch/api"
	"github.com/momentics/hioload-fetch/control"
)

func TestFetchReportsEveryURLWhenReactorFails(t *testing.T) {
	boom := errors.New("epoll unavailable")
	orig := newReactor
	newReactor = func(int) (api.Reactor, error) { return nil, boom }
	t.Cleanup(func() { newReactor = orig })

	metrics := control.NewMetricsRegistry()
	var observed []string
	urls := []string{"http://10.0.0.1/", "http://10.0.0.2/x"}
	outs, err := Fetch(context.Background(), urls,
		WithMetrics(metrics),
		WithObserver(func(o api.Outcome) { observed = append(observed, o.ID) }))
	require.ErrorIs(t, err, boom)
	require.Len(t, outs, 2)
	for i, o := range outs {
		assert.Equal(t, urls[i], o.URL)
		assert.Equal(t, api.KindAborted, api.KindOf(o.Err))
		assert.ErrorIs(t, o.Err, boom)
	}
	assert.Equal(t, []string{"task-0", "task-1"}, observed)
	assert.Equal(t, int64(2), metrics.Get(control.MetricTasksFailed))
}
