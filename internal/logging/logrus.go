package logging

import (
	"os"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LogrusRecorder is the production Recorder: one JSONFormatter logger
// writing the primary JSONL sink, plus an lfshook mirror that also
// writes risk/mode_change/error-level records to a separate incident
// file (spec §2.1).
type LogrusRecorder struct {
	log *logrus.Logger
}

// Config controls where the primary and incident sinks write and how
// they rotate.
type Config struct {
	PrimaryPath  string
	IncidentPath string
	MaxSizeMB    int
	MaxAgeDays   int
	MaxBackups   int
}

// incidentEvents mirrors to the incident sink in addition to the
// primary one.
var incidentEvents = map[string]bool{
	EventRisk:       true,
	EventModeChange: true,
}

// NewLogrusRecorder builds the production Recorder per cfg. A
// PrimaryPath of "" writes to stdout only (useful for local/dev runs).
func NewLogrusRecorder(cfg Config) *LogrusRecorder {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if cfg.PrimaryPath != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.PrimaryPath,
			MaxSize:    nonZero(cfg.MaxSizeMB, 100),
			MaxAge:     nonZero(cfg.MaxAgeDays, 14),
			MaxBackups: nonZero(cfg.MaxBackups, 10),
		})
	} else {
		logger.SetOutput(os.Stdout)
	}

	if cfg.IncidentPath != "" {
		incidentWriter := &lumberjack.Logger{
			Filename:   cfg.IncidentPath,
			MaxSize:    nonZero(cfg.MaxSizeMB, 100),
			MaxAge:     nonZero(cfg.MaxAgeDays, 90),
			MaxBackups: nonZero(cfg.MaxBackups, 10),
		}
		logger.AddHook(lfshook.NewHook(lfshook.WriterMap{
			logrus.ErrorLevel: incidentWriter,
			logrus.WarnLevel:  incidentWriter,
		}, &logrus.JSONFormatter{}))
	}

	return &LogrusRecorder{log: logger}
}

func nonZero(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Record implements Recorder. Risk/mode_change events log at Warn so
// the lfshook incident mirror picks them up; everything else logs at
// Info.
func (r *LogrusRecorder) Record(rec Record) {
	level := logrus.InfoLevel
	if incidentEvents[rec.Event] {
		level = logrus.WarnLevel
	}

	entry := r.log.WithFields(logrus.Fields{
		"ts":            rec.Ts,
		"event":         rec.Event,
		"intent":        rec.Intent,
		"source":        rec.Source,
		"mode":          rec.Mode,
		"reason":        rec.Reason,
		"leg":           rec.Leg,
		"cycle_id":      rec.CycleID,
		"client_id":     rec.ClientID,
		"exch_order_id": rec.ExchOrderID,
		"trade_id":      rec.TradeID,
		"data":          rec.Data,
		"res":           rec.Res,
	})
	if rec.Simulated != nil {
		entry = entry.WithField("simulated", *rec.Simulated)
	}
	entry.Log(level, rec.Event)
}
