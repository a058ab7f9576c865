package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// PollTicks 轮询相关
	PollTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poller_ticks_total",
			Help: "Total number of poll ticks executed.",
		},
	)
	PollTicksSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poller_ticks_skipped_total",
			Help: "Total number of poll ticks skipped because the previous tick was still running.",
		},
	)
	PollRangeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poller_range_failures_total",
			Help: "Total number of block ranges whose log fetch failed after retries.",
		},
	)
	SwapLogsScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poller_swap_logs_scanned_total",
			Help: "Total number of swap logs fetched and classified.",
		},
	)
	BuysDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poller_buys_detected_total",
			Help: "Total number of swap logs classified as buys.",
		},
	)
	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poller_tick_duration_seconds",
			Help:    "Time taken to run one poll tick.",
			Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
	)

	// RPCRetryFailures RPC 重试指标
	RPCRetryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_retry_failures_total",
			Help: "Total number of failed attempts inside the retry executor.",
		},
		[]string{"op"},
	)

	// SnapshotDuration 快照聚合指标
	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_fetch_duration_seconds",
			Help:    "Time taken to aggregate one pool snapshot.",
			Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
	)
	SnapshotFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_failures_total",
			Help: "Total number of snapshot attempts that collapsed to nil.",
		},
	)

	// AlertsSent 告警发送指标
	AlertsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_sent_total",
			Help: "Total number of buy alerts pushed to Telegram.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		// 轮询指标
		PollTicks,
		PollTicksSkipped,
		PollRangeFailures,
		SwapLogsScanned,
		BuysDetected,
		TickDuration,

		// rpc与快照指标
		RPCRetryFailures,
		SnapshotDuration,
		SnapshotFailures,

		// 告警指标
		AlertsSent,
	)
}
