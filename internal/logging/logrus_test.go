package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusRecorder_WritesPrimarySink(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "engine.jsonl")

	r := NewLogrusRecorder(Config{PrimaryPath: primary})
	r.Record(Record{Ts: time.Now(), Event: EventTick, Mode: "QUOTING"})

	b, err := os.ReadFile(primary)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"event":"tick"`)
}

func TestLogrusRecorder_MirrorsIncidentEvents(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "engine.jsonl")
	incident := filepath.Join(dir, "incident.jsonl")

	r := NewLogrusRecorder(Config{PrimaryPath: primary, IncidentPath: incident})
	r.Record(Record{Ts: time.Now(), Event: EventRisk, Reason: "book_stale"})

	b, err := os.ReadFile(incident)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"reason":"book_stale"`)
}
