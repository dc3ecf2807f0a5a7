package protocol

import "github.com/prometheus/client_golang/prometheus"

var (
	promOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jbod_protocol_ops_total",
		Help: "Number of device operations sent to a remote array",
	}, []string{"command"})
	promOpFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jbod_protocol_op_failures_total",
		Help: "Number of device operations that failed in transport or on the remote array",
	}, []string{"command"})
	promServedOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jbod_protocol_served_ops_total",
		Help: "Number of device operations handled by the server",
	}, []string{"command"})
	promConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jbod_protocol_server_conns",
		Help: "Number of open client connections to the server",
	})
)

func init() {
	prometheus.MustRegister(promOps)
	prometheus.MustRegister(promOpFailures)
	prometheus.MustRegister(promServedOps)
	prometheus.MustRegister(promConns)
}
