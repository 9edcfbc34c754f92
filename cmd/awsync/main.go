package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"awsync/internal/aggregate"
	"awsync/internal/awclient"
	"awsync/internal/category"
	"awsync/internal/config"
	"awsync/internal/event"
	"awsync/internal/exist"
	"awsync/internal/focus"
	"awsync/internal/state"

	sqlitestate "awsync/internal/state/sqlite"
)

var (
	configPath string
	logPath    string
)

var rootCmd = &cobra.Command{
	Use:   "awsync",
	Short: "Sync ActivityWatch daily metrics to Exist.io",
	Long: `awsync pulls window/browser activity from a local ActivityWatch daemon,
computes per-day metrics (screen time, categorized app/domain usage, and a
0-100 focus score from context-switching analysis) and pushes them to
Exist.io as custom attributes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logPath)
	},
}

// setupLogging redirects the standard logger to a file when requested;
// default is stderr.
func setupLogging(logFilePath string) error {
	if logFilePath == "" {
		log.SetOutput(os.Stderr)
		return nil
	}
	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logFilePath, err)
	}
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	return nil
}

// --- Wiring helpers ---

func focusConfig(cfg *config.Config) focus.Config {
	return focus.Config{
		NoiseThreshold:     cfg.Focus.NoiseThresholdSeconds,
		SensitivityK:       cfg.Focus.SensitivityK,
		SessionBonusCapMin: cfg.Focus.SessionBonusCapMin,
		EmptyDayScore:      cfg.Focus.EmptyDayScore,
	}
}

func categorizer(cfg *config.Config) *category.Categorizer {
	rules := make(map[string]category.Rule, len(cfg.Categories))
	for tag, r := range cfg.Categories {
		rules[tag] = category.Rule{Apps: r.Apps, Domains: r.Domains}
	}
	return category.New(rules)
}

func publisher(cfg *config.Config) *exist.Publisher {
	client := exist.New(cfg.Exist.APIBase, cfg.Exist.AccessToken, cfg.Exist.Timeout())
	attrs := make(map[string]string, len(cfg.Categories))
	for tag, r := range cfg.Categories {
		if r.Attribute != "" {
			attrs[tag] = r.Attribute
		}
	}
	return exist.NewPublisher(client, exist.PublisherConfig{
		ScreenTimeAttr: cfg.Exist.ScreenTimeAttr,
		FocusScoreAttr: cfg.Exist.FocusScoreAttr,
		CategoryAttrs:  attrs,
	})
}

func openState(ctx context.Context, cfg *config.Config) (state.Store, error) {
	store := sqlitestate.NewSQLiteStore(cfg.StatePath)
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open sync state db: %w", err)
	}
	return store, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

// --- sync ---

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch, aggregate, and push metrics for one or more days",
	RunE: func(cmd *cobra.Command, args []string) error {
		dateStr, _ := cmd.Flags().GetString("date")
		days, _ := cmd.Flags().GetInt("days")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		backfill, _ := cmd.Flags().GetBool("backfill")

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if !dryRun && cfg.Exist.AccessToken == "" {
			return fmt.Errorf("no Exist access token configured (set exist.access_token or AWSYNC_EXIST_ACCESS_TOKEN)")
		}

		ctx := cmd.Context()
		aw := awclient.New(cfg.ActivityWatch.APIBase, cfg.ActivityWatch.Timeout())

		// Connection check before doing any per-day work.
		buckets, err := aw.Buckets(ctx)
		if err != nil {
			return fmt.Errorf("cannot connect to ActivityWatch (is it running?): %w", err)
		}
		log.Printf("Connected to ActivityWatch (%d buckets)", len(buckets))

		store, err := openState(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		pub := publisher(cfg)
		if !dryRun {
			if err := pub.EnsureAttributes(ctx); err != nil {
				return fmt.Errorf("failed to set up Exist attributes: %w", err)
			}
			log.Println("Exist attributes ready")
		}

		dates, err := selectDates(ctx, store, cfg, dateStr, days, backfill)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			fmt.Println("Nothing to sync.")
			return nil
		}

		agg := aggregate.NewAggregator(categorizer(cfg), focus.NewAnalyzer(focusConfig(cfg)))
		runner := aggregate.NewRunner(aw, pub, agg)
		results := runner.RunDates(ctx, dates, dryRun)

		okCount := 0
		for _, res := range results {
			printDay(res, dryRun)
			if res.Err != nil {
				continue
			}
			okCount++
			if !dryRun {
				if err := store.MarkSynced(ctx, res.Aggregate); err != nil {
					log.Printf("Warning: failed to record sync state for %s: %v",
						res.Date.Format("2006-01-02"), err)
				}
			}
		}
		if err := store.Cleanup(ctx, time.Now(), 30); err != nil {
			log.Printf("Warning: sync state cleanup failed: %v", err)
		}

		fmt.Printf("\nSynced %d/%d days\n", okCount, len(results))
		if okCount < len(results) {
			return fmt.Errorf("%d day(s) failed", len(results)-okCount)
		}
		return nil
	},
}

func selectDates(ctx context.Context, store state.Store, cfg *config.Config, dateStr string, days int, backfill bool) ([]time.Time, error) {
	if dateStr != "" {
		d, err := parseDate(dateStr)
		if err != nil {
			return nil, err
		}
		return []time.Time{d}, nil
	}
	today, _ := event.DayWindow(time.Now())
	if backfill {
		missed, err := store.UnsyncedDates(ctx, today, cfg.BackfillDays)
		if err != nil {
			return nil, err
		}
		return append(missed, today), nil
	}
	if days < 1 {
		days = 1
	}
	var dates []time.Time
	for i := days - 1; i >= 0; i-- { // oldest first
		dates = append(dates, today.AddDate(0, 0, -i))
	}
	return dates, nil
}

func printDay(res aggregate.Result, dryRun bool) {
	dateStr := res.Date.Format("2006-01-02")
	if res.Err != nil && res.Aggregate.CategorySeconds == nil {
		fmt.Printf("%s: error: %v\n", dateStr, res.Err)
		return
	}
	day := res.Aggregate
	fmt.Printf("%s:\n", dateStr)
	fmt.Printf("  Screen time: %s\n", formatDurationHuman(time.Duration(day.ActiveSeconds*float64(time.Second))))
	for _, tag := range sortedTags(day.CategorySeconds) {
		fmt.Printf("  %-12s %s\n", tag+":", formatDurationHuman(time.Duration(day.CategorySeconds[tag]*float64(time.Second))))
	}
	if day.Focus.Sessions > 0 {
		fmt.Printf("  Focus score: %.0f/100 (median: %.1fm, switches: %.1f/h)\n",
			day.FocusScore, day.Focus.MedianSessionMin, day.Focus.SwitchesPerHour)
	} else {
		fmt.Printf("  Focus score: %.0f/100 (no data)\n", day.FocusScore)
	}
	switch {
	case res.Err != nil:
		fmt.Printf("  Publish failed: %v\n", res.Err)
	case dryRun:
		fmt.Println("  (dry run - not pushing)")
	default:
		fmt.Println("  Pushed to Exist.io")
	}
}

// --- setup ---

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create and acquire the Exist.io attributes, without syncing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Exist.AccessToken == "" {
			return fmt.Errorf("no Exist access token configured (set exist.access_token or AWSYNC_EXIST_ACCESS_TOKEN)")
		}
		if err := publisher(cfg).EnsureAttributes(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Exist.io attributes ready.")
		return nil
	},
}

// --- score ---

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show the focus analysis for one day without publishing",
	RunE: func(cmd *cobra.Command, args []string) error {
		dateStr, _ := cmd.Flags().GetString("date")

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		date := time.Now()
		if dateStr != "" {
			if date, err = parseDate(dateStr); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		aw := awclient.New(cfg.ActivityWatch.APIBase, cfg.ActivityWatch.Timeout())
		in, err := aw.DayEvents(ctx, date)
		if err != nil {
			return fmt.Errorf("cannot fetch events: %w", err)
		}

		agg := aggregate.NewAggregator(categorizer(cfg), focus.NewAnalyzer(focusConfig(cfg)))
		day := agg.Day(date, in)
		m := day.Focus

		if m.Sessions == 0 {
			fmt.Printf("%s: no window data\n", date.Format("2006-01-02"))
			return nil
		}

		fmt.Printf("Focus Score: %.0f/100\n", m.Score)
		fmt.Printf("  Median session: %.1f min\n", m.MedianSessionMin)
		fmt.Printf("  Switches/hour:  %.1f\n", m.SwitchesPerHour)
		fmt.Printf("  Entropy:        %.2f bits\n", m.Entropy)
		fmt.Printf("  Sessions: %d, Time: %.0f min\n", m.Sessions, m.TotalMin)
		fmt.Println()
		fmt.Println(focus.Interpret(m.Score))

		if m.MedianSessionMin < cfg.Focus.FragmentationMinutes {
			fmt.Printf("Median session below the %.0f-minute fragmentation threshold\n", cfg.Focus.FragmentationMinutes)
		} else if m.MedianSessionMin > cfg.Focus.DeepWorkMinutes {
			fmt.Printf("Median session in the deep-work range (>%.0f min)\n", cfg.Focus.DeepWorkMinutes)
		}
		return nil
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recently synced days from the local state store",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := cmd.Context()
		store, err := openState(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Recent(ctx, limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No synced days recorded yet.")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%s  screen %-8s focus %3.0f  (synced %s)\n",
				r.Date.Format("2006-01-02"),
				formatDurationHuman(time.Duration(r.ActiveSeconds*float64(time.Second))),
				r.FocusScore,
				r.SyncedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// --- Helpers ---

func formatDurationHuman(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func sortedTags(categorySeconds map[string]float64) []string {
	tags := make([]string, 0, len(categorySeconds))
	for tag := range categorySeconds {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ./config.yaml, ~/.config/awsync/config.yaml, /etc/awsync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to log file (default: stderr)")

	syncCmd.Flags().String("date", "", "Specific date to sync (YYYY-MM-DD)")
	syncCmd.Flags().IntP("days", "d", 1, "Number of past days to sync, ending today")
	syncCmd.Flags().Bool("dry-run", false, "Compute and print metrics without pushing or recording state")
	syncCmd.Flags().Bool("backfill", false, "Also sync any unsynced days within the backfill window")
	rootCmd.AddCommand(syncCmd)

	scoreCmd.Flags().String("date", "", "Date to analyze (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(scoreCmd)

	statusCmd.Flags().IntP("limit", "n", 14, "Number of recent days to show")
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(setupCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
