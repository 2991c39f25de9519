package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var perfMeter = otel.Meter("perf_stats")
var cpuUsageGauge, _ = perfMeter.Float64Gauge("cpu_usage")
var heapGauge, _ = perfMeter.Int64Gauge("heap_allocated_mb")
var liveObjectGauge, _ = perfMeter.Int64Gauge("live_objects")
var goroutineGauge, _ = perfMeter.Int64Gauge("goroutine_count")

// InstrumentPerfStats samples process health every 30 seconds for the
// duration of ctx. Long scrape passes are the intended consumer: a
// stuck pass shows up as flat cpu with a climbing goroutine count.
func InstrumentPerfStats(ctx context.Context) {
	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runtime.ReadMemStats(&memStats)

				usage, err := cpu.Percent(time.Minute, false)
				if err == nil {
					cpuUsageGauge.Record(ctx, usage[0])
				} else {
					slog.Warn("failed to read cpu usage", "err", err)
				}

				heapGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
				liveObjectGauge.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
				goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
			case <-ctx.Done():
				return
			}
		}
	}()
}
