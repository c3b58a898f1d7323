package server

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestStartStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Start(ctx, abci.NewBaseApplication(), log.NewNopLogger(), StartConfig{
			Bind:        "tcp://127.0.0.1:0",
			MetricsAddr: "127.0.0.1:0",
			Gatherer:    prometheus.NewRegistry(),
		})
	}()

	// let both servers come up
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStartInvalidBind(t *testing.T) {
	err := Start(context.Background(), abci.NewBaseApplication(), log.NewNopLogger(), StartConfig{
		Bind: "tcp://256.0.0.1:-1",
	})
	assert.Error(t, err)
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "swap_test_total",
		Help: "Test counter.",
	}).Add(3)

	srv := httptest.NewServer(MetricsHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "swap_test_total 3"), string(body))

	resp, err = http.Get(srv.URL + "/other")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
