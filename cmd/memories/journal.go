package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ai-memories/internal/diary"
	"ai-memories/internal/journal"
)

func addCmd() *cobra.Command {
	var apiKey string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Write a journal entry and print the companion's reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Service.SubmitEntry(ctx, diary.SubmitEntryRequest{
				Content: strings.Join(args, " "),
				APIKey:  apiKey,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Entry %d saved.\n\n%s\n", res.Entry.ID, res.AIResponse)
			for _, t := range res.Tags {
				fmt.Fprintf(os.Stdout, "  - %s: %s\n", t.Type, t.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "LLM credential for this call (defaults to the configured key)")
	return cmd
}

func entriesCmd() *cobra.Command {
	var from, to int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List journal entries, optionally within a year range",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			var era journal.Era
			if cmd.Flags().Changed("from") {
				era.Start = &from
			}
			if cmd.Flags().Changed("to") {
				era.End = &to
			}
			entries, err := app.Service.EntriesByEra(ctx, era)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(os.Stdout, "No entries found.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(os.Stdout, "[%s] %s\n", e.Day(), e.Content)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "First year, inclusive")
	cmd.Flags().IntVar(&to, "to", 0, "Last year, inclusive")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the knowledge summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintln(os.Stdout, app.Service.Summary(ctx).String())
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag with its entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			records := app.Service.Tags(ctx)
			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, "No tags found.")
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", r.EntryID, r.Type, r.Value)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the journaling digest for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().UTC()
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				day = d
			}

			ctx, cancel := signalContext()
			defer cancel()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprint(os.Stdout, app.Service.DailyStats(ctx, day).GenerateReportSummary())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD (defaults to today, UTC)")
	return cmd
}
