// storage implements local emulations of a disk array. They honor the same
// device contract as a remote array and are what the jbodd server exposes
// over the wire. Three backends are provided: "temp" keeps blocks in memory,
// "mfile" in an mmap'd file, and "bolt" in a BoltDB database.
package storage

import (
	"github.com/coreos/pkg/capnslog"
	"github.com/prometheus/client_golang/prometheus"
)

var clog = capnslog.NewPackageLogger("github.com/coreos/jbod", "storage")

var (
	promBlocks = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jbod_storage_blocks",
		Help: "Gauge of number of blocks ever written to an emulated array",
	}, []string{"storage"})
	promBlocksAvail = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jbod_storage_blocks_total",
		Help: "Gauge of number of blocks available in an emulated array",
	}, []string{"storage"})
	promBlocksRetrieved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jbod_storage_read_blocks",
		Help: "Number of blocks read from an emulated array",
	}, []string{"storage"})
	promBlocksWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jbod_storage_written_blocks",
		Help: "Number of blocks written to an emulated array",
	}, []string{"storage"})
	promOpsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jbod_storage_failed_ops",
		Help: "Number of device operations rejected by an emulated array",
	}, []string{"storage"})
	promMounted = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jbod_storage_mounted",
		Help: "1 if the emulated array is mounted",
	}, []string{"storage"})
	promBytesPerBlock = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jbod_storage_block_bytes",
		Help: "Number of bytes per block in the storage layer",
	})
)

func init() {
	prometheus.MustRegister(promBlocks)
	prometheus.MustRegister(promBlocksAvail)
	prometheus.MustRegister(promBlocksRetrieved)
	prometheus.MustRegister(promBlocksWritten)
	prometheus.MustRegister(promOpsFailed)
	prometheus.MustRegister(promMounted)
	prometheus.MustRegister(promBytesPerBlock)
}
