package analog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crossbar_ops_issued_total",
		Help: "Total hardware instructions issued, by operation",
	}, []string{"op"})

	hardwareFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossbar_hardware_failures_total",
		Help: "Total non-zero status flags returned by the accelerator",
	})

	quantizeTransfers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossbar_quantize_transfers_total",
		Help: "Total quantizing host-to-device transfers",
	})

	saturatedElements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossbar_saturated_elements_total",
		Help: "Total elements clamped to the device type limits during quantization",
	})
)
