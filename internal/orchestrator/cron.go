package orchestrator

import (
	"context"

	"github.com/robfig/cron/v3"
)

// runScheduledJobs drives the periodic maintenance jobs of spec §6
// that don't belong on the tick cadence: the profit-stats report. It
// parses Config.ProfitReportCron with the standard five-field
// schedule; an empty expression disables the job entirely.
func (s *Supervisor) runScheduledJobs(ctx context.Context) error {
	if s.Config.ProfitReportCron == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	c := cron.New()
	_, err := c.AddFunc(s.Config.ProfitReportCron, s.reportProfit)
	if err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

func (s *Supervisor) reportProfit() {
	if s.Notifier == nil {
		return
	}
	realized, _ := s.OMS.Profit.RealizedPnL.Float64()
	fees, _ := s.OMS.Profit.TotalFees.Float64()
	_ = s.Notifier.ProfitReport(s.Config.Symbol, realized, fees)
}
