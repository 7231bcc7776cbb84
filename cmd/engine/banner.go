package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/config"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/constraints"
)

// printBanner renders a one-time human-readable startup summary before
// the engine switches over to JSONL logging. constraintsStore may be
// unloaded yet (Loaded() == false); the banner then prints a
// "constraints not loaded yet" notice instead of the constraints YAML.
func printBanner(cfg *config.Config, constraintsStore *constraints.Store) {
	mode := "LIVE"
	if cfg.DryRun {
		mode = "DRY-RUN"
	}
	color.New(color.FgCyan, color.Bold).Printf("bitget-eth-mm-bi-funding — %s — %s\n", cfg.Symbol, mode)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"setting", "value"})
	t.AppendRows([]table.Row{
		{"tick_sec", cfg.TickSec},
		{"quote_qty", cfg.QuoteQty},
		{"base_half_spread_bps", cfg.BaseHalfSpreadBps},
		{"k_obi", cfg.KOBI},
		{"max_unhedged_notional", cfg.MaxUnhedgedNotional},
		{"reject_streak_halt", cfg.RejectStreakHalt},
		{"expected_position_mode", cfg.ExpectedPositionMode},
		{"admin_addr", orDefault(cfg.AdminAddr, "(disabled)")},
	})
	t.Render()

	if constraintsStore.Loaded() {
		if yamlStr, err := constraintsStore.DebugYAML(); err == nil {
			fmt.Println(yamlStr)
		}
	} else {
		color.Yellow("constraints not loaded yet")
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
