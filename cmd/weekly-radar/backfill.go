// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/weekly-radar/internal/weekly"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Process every week from --since through the current week",
	Long: `Backfill walks Monday-aligned weeks from --since to today, oldest first,
and runs the pipeline for each week that is absent or empty. --refresh
recomputes every week. A pause separates weeks that call the providers.`,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().String("since", "", "first date considered (YYYY-MM-DD, default backfill.since)")
	backfillCmd.Flags().Int("max-weeks", 0, "only process the most recent N weeks of the range")
	backfillCmd.Flags().Duration("sleep", 0, "pause between weeks (default backfill.week_delay)")
	backfillCmd.Flags().Bool("refresh", false, "recompute every week, including populated ones")

	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	sinceStr, _ := cmd.Flags().GetString("since")
	if sinceStr == "" {
		sinceStr = cfg.Backfill.Since
	}
	since, err := time.Parse(types.DateLayout, sinceStr)
	if err != nil {
		return fmt.Errorf("parsing --since: %w", err)
	}
	maxWeeks, _ := cmd.Flags().GetInt("max-weeks")
	delay, _ := cmd.Flags().GetDuration("sleep")
	if delay == 0 {
		delay = cfg.Backfill.WeekDelay
	}
	refresh, _ := cmd.Flags().GetBool("refresh")

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signalContext()
	defer cancel()

	br, err := p.runner.Backfill(ctx, weekly.BackfillOptions{
		Since:     since,
		MaxWeeks:  maxWeeks,
		Force:     refresh,
		WeekDelay: delay,
	})
	for _, rep := range br.Weeks {
		printReport(os.Stdout, rep)
	}
	fmt.Fprintf(os.Stdout, "\nbackfill: %d persisted, %d already populated, %d empty\n",
		br.Persisted, br.Skipped, br.Empty)
	return err
}
