// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/weekly-radar/internal/archive"
)

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "Inspect the weekly archive",
}

// --- list subcommand ---

var weeksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived weeks, most recent first",
	RunE:  runWeeksList,
}

func runWeeksList(cmd *cobra.Command, args []string) error {
	a, closeFn, err := openArchive()
	if err != nil {
		return err
	}
	defer closeFn()

	weeks, err := a.List(context.Background())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "table" {
		return archive.Encode(os.Stdout, weeks, format)
	}

	if len(weeks) == 0 {
		fmt.Fprintln(os.Stdout, "No weeks archived.")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WEEK\tEND\tUPDATED\tITEMS")
	for _, w := range weeks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", w.WeekStart, w.WeekEnd, w.LastUpdated, w.TotalItems)
	}
	return tw.Flush()
}

// --- show subcommand ---

var weeksShowCmd = &cobra.Command{
	Use:   "show <week-start>",
	Short: "Print one archived week as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeeksShow,
}

func runWeeksShow(cmd *cobra.Command, args []string) error {
	a, closeFn, err := openArchive()
	if err != nil {
		return err
	}
	defer closeFn()

	s, found, err := a.Read(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("week %s not archived", args[0])
	}
	format, _ := cmd.Flags().GetString("format")
	return archive.Encode(os.Stdout, s, format)
}

func openArchive() (*archive.Archive, func() error, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	a, closer, err := archive.Open(cfg.Archive)
	if err != nil {
		return nil, nil, err
	}
	return a, closer.Close, nil
}

func init() {
	weeksListCmd.Flags().String("format", "table", "output format: table, json or yaml")
	weeksShowCmd.Flags().String("format", "json", "output format: json or yaml")

	weeksCmd.AddCommand(weeksListCmd)
	weeksCmd.AddCommand(weeksShowCmd)
	rootCmd.AddCommand(weeksCmd)
}
