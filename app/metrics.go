package app

import (
	"strconv"
	"time"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a decorator that records the number of processed
// transactions and the time it took to deliver them. Transactions are
// labeled with their message path and the ABCI code of the result.
type Metrics struct {
	txs      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ tokenswap.Decorator = (*Metrics)(nil)

// NewMetrics returns a decorator registering its collectors with reg.
// Use prometheus.DefaultRegisterer to expose them with promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		txs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenswap",
			Name:      "txs_total",
			Help:      "Processed transactions by phase, message path and result code.",
		}, []string{"phase", "path", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokenswap",
			Name:      "tx_deliver_duration_seconds",
			Help:      "Time spent delivering a transaction.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"path"}),
	}
}

func (m *Metrics) Check(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx, next tokenswap.Checker) (*tokenswap.CheckResult, error) {
	res, err := next.Check(ctx, store, tx)
	m.count("check", tx, err)
	return res, err
}

func (m *Metrics) Deliver(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx, next tokenswap.Deliverer) (*tokenswap.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.duration.WithLabelValues(tokenswap.GetPath(tx)).Observe(time.Since(start).Seconds())
	m.count("deliver", tx, err)
	return res, err
}

func (m *Metrics) count(phase string, tx tokenswap.Tx, err error) {
	code, _ := errors.ABCIInfo(err, false)
	m.txs.WithLabelValues(phase, tokenswap.GetPath(tx), strconv.FormatUint(uint64(code), 10)).Inc()
}
