package process

import (
	"log/slog"
	"time"

	"github.com/reverie-ai/reverie/pkg/register"
	"github.com/reverie-ai/reverie/pkg/safe"
)

func init() {
	register.RegisterFunc(ProcessKey{}, func(p *Process) {
		// 定期清理闲置的内存分区与采集会话
		if _, err := p.Cron().AddFunc("@every 5m", p.sweepIdle); err != nil {
			panic(err)
		}

		// 每日归档统计
		if _, err := p.Cron().AddFunc("0 3 * * *", p.reportStats); err != nil {
			panic(err)
		}
	})
}

// sweepIdle evicts journal partitions and capture sessions that nobody has
// touched, then refreshes the gauges.
func (p *Process) sweepIdle() {
	safe.RunWithLog(func() {
		core := p.Core()

		maxIdle := time.Duration(core.Cfg().Journal.PartitionMaxIdleMinutes) * time.Minute
		if maxIdle > 0 {
			if evicted := core.Journal().EvictIdle(maxIdle); evicted > 0 {
				slog.Info("evicted idle journal partitions", slog.Int("count", evicted))
			}
		}

		sessionIdle := time.Duration(core.Cfg().Capture.SessionMaxIdleMinutesOrDefault()) * time.Minute
		if swept := core.Capture().Sweep(sessionIdle); swept > 0 {
			slog.Info("swept idle capture sessions", slog.Int("count", swept))
		}

		core.Metrics().SetPartitionCount(core.Journal().PartitionCount())
		core.Metrics().SetCaptureSessionCount(core.Capture().SessionCount())
	}, "process.sweepIdle")
}

func (p *Process) reportStats() {
	safe.RunWithLog(func() {
		core := p.Core()
		slog.Info("journal runtime stats",
			slog.Int("partitions", core.Journal().PartitionCount()),
			slog.Int("capture_sessions", core.Capture().SessionCount()))
	}, "process.reportStats")
}
