package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Watcher-facing metrics, registered against the default registry the
// same way the teacher's subsystems register their own collectors
// alongside metrics.StartMetricsServer's shared promhttp.Handler.
var (
	BlocksProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "evmwatch",
		Name:      "blocks_processed_total",
		Help:      "Number of blocks the watcher has successfully processed and committed.",
	})

	HeadBlock = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "evmwatch",
		Name:      "head_block",
		Help:      "Block number of the watcher's current head.",
	})

	RpcErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "evmwatch",
		Name:      "rpc_errors_total",
		Help:      "Number of RPC calls to the upstream node that returned an error.",
	})

	LastPollDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "evmwatch",
		Name:      "last_poll_duration_seconds",
		Help:      "Wall-clock duration of the most recent tail poll iteration.",
	})
)

func init() {
	prometheus.MustRegister(BlocksProcessed, HeadBlock, RpcErrors, LastPollDuration)
}
