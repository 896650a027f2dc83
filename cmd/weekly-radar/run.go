// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/weekly-radar/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, enrich and archive one week",
	Long: `Run processes the week containing today (or --week). A week whose
archived document already has items is left untouched unless --force is
given. A week with no records at all is reported and not written.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("week", "", "any date inside the target week (YYYY-MM-DD, default today)")
	runCmd.Flags().Bool("force", false, "recompute the week even if already populated")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	target := time.Now().UTC()
	if s, _ := cmd.Flags().GetString("week"); s != "" {
		target, err = time.Parse(types.DateLayout, s)
		if err != nil {
			return fmt.Errorf("parsing --week: %w", err)
		}
	}
	force, _ := cmd.Flags().GetBool("force")

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signalContext()
	defer cancel()

	rep, err := p.runner.RunWeek(ctx, target, force)
	printReport(os.Stdout, rep)
	return err
}
