package metrics

import (
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/evmstate/store"
	"github.com/ethpandaops/evmstate/utils"
)

type Metrics struct {
	preCollectFns []func()
}

type MetricsHandler struct {
	handler         http.Handler
	lastCollectTime time.Time
}

var metrics *Metrics = &Metrics{
	preCollectFns: []func(){},
}

func AddPreCollectFn(fn func()) {
	metrics.preCollectFns = append(metrics.preCollectFns, fn)
}

// StartMetricsServer serves the Prometheus registry on host:port. st, if
// non-nil, is polled for the current head before a scrape, at most once
// per second, so HeadBlock stays accurate even between watcher poll ticks.
func StartMetricsServer(logger logrus.FieldLogger, host string, port string, st *store.Store) error {
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "9090"
	}

	if st != nil {
		AddPreCollectFn(func() {
			if head, ok, err := st.GetHead(); err == nil && ok {
				HeadBlock.Set(float64(head))
			}
		})
	}

	srv := &http.Server{
		Addr:    host + ":" + port,
		Handler: GetMetricsHandler(),
	}

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	go func() {
		defer utils.HandleSubroutinePanic("metrics-server")
		logger.Infof("metrics server listening on %v", srv.Addr)
		if err := srv.Serve(listener); err != nil {
			logger.WithError(err).Fatal("Error serving metrics")
		}
	}()

	return nil
}

func GetMetricsHandler() http.Handler {
	return &MetricsHandler{
		handler:         promhttp.Handler(),
		lastCollectTime: time.Now(),
	}
}

func (mh *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if time.Since(mh.lastCollectTime) > 1*time.Second {
		for _, fn := range metrics.preCollectFns {
			fn()
		}
		mh.lastCollectTime = time.Now()
	}

	mh.handler.ServeHTTP(w, r)
}
