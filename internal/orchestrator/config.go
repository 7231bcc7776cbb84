package orchestrator

import "time"

// Config is the orchestrator-level subset of spec §6's configuration
// surface: tick cadence and the admin surface it exposes.
type Config struct {
	Symbol            string
	TickInterval      time.Duration
	AdminAddr         string // empty disables the admin HTTP server
	ProfitReportCron  string // robfig/cron expression, empty disables
}
