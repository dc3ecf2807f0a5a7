package block

import "github.com/prometheus/client_golang/prometheus"

var (
	promVolumeReads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jbod_volume_reads_total",
		Help: "Total number of reads issued against a volume",
	})
	promVolumeWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jbod_volume_writes_total",
		Help: "Total number of writes issued against a volume",
	})
	promVolumeBytesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jbod_volume_read_bytes_total",
		Help: "Number of bytes read from a volume",
	})
	promVolumeBytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jbod_volume_written_bytes_total",
		Help: "Number of bytes written to a volume",
	})
	promVolumeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jbod_volume_failures_total",
		Help: "Number of volume reads and writes aborted by a device failure",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(promVolumeReads)
	prometheus.MustRegister(promVolumeWrites)
	prometheus.MustRegister(promVolumeBytesRead)
	prometheus.MustRegister(promVolumeBytesWritten)
	prometheus.MustRegister(promVolumeFailures)
}
