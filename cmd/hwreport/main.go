package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-hwreport/internal/codec"
	"github.com/go-tangra/go-tangra-hwreport/internal/collector"
	"github.com/go-tangra/go-tangra-hwreport/internal/config"
	"github.com/go-tangra/go-tangra-hwreport/internal/convert"
	"github.com/go-tangra/go-tangra-hwreport/internal/logging"
	"github.com/go-tangra/go-tangra-hwreport/internal/pipeline"
	"github.com/go-tangra/go-tangra-hwreport/internal/report"
	"github.com/go-tangra/go-tangra-hwreport/internal/sink"
	"github.com/go-tangra/go-tangra-hwreport/internal/store"
)

var (
	version    = "dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hwreport",
	Short: "hwreport - normalized hardware inventory report",
	Long: `hwreport detects the machine's CPU, motherboard, memory, GPU, storage,
network, audio and USB controllers and system identity, normalizes what the
platform reports and writes a deterministic, versioned report.

Run without a subcommand to detect and write a report (equivalent to 'detect').`,
	RunE:         runDetect,
	SilenceUsage: true,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect hardware and write a report",
	RunE:  runDetect,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hwreport %s (commit: %s, built: %s, schema: %d)\n", version, commitHash, buildDate, report.SchemaVersion)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List reports stored in the history database",
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge stored reports older than the specified number of days",
	RunE:  runPurge,
}

var (
	purgeDays    int
	historyHost  string
	historyLimit int
	historyPage  int
	showFormat   string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./hwreport.yaml or ./configs/hwreport.yaml)")
	pf.StringP("output", "o", "", `report file ("-" = stdout, the default)`)
	pf.StringP("format", "f", "", "report format: json, yaml or cbor (default json)")
	pf.Bool("include-unknown", false, "keep unknown fields in the report as null")
	pf.String("naming", "", "field naming: canonical or targetSpecific (default canonical)")
	pf.Bool("drop-empty-modules", false, "leave memory modules with no known field out of the report")
	pf.Bool("sequential", false, "query hardware classes one at a time")
	pf.String("database", "", "SQLite history database (empty = no history)")
	pf.String("post-url", "", "also POST the report to this URL")
	pf.String("post-secret", "", "sent as X-Client-Secret with --post-url")
	pf.String("log-level", "", "log level (default info)")
	pf.String("log-format", "", "log format: console or json")

	historyCmd.Flags().StringVar(&historyHost, "host", "", "only reports from this hostname")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "reports per page")
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page number")

	showCmd.Flags().StringVar(&showFormat, "as", "", "re-encode the report in this format")

	purgeCmd.Flags().IntVar(&purgeDays, "days", 90, "purge records older than this many days")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(purgeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// CLI flag overrides.
	flags := cmd.Flags()
	if v, _ := flags.GetString("output"); v != "" {
		cfg.Output = v
	}
	if v, _ := flags.GetString("format"); v != "" {
		cfg.Format = v
	}
	if flags.Changed("include-unknown") {
		cfg.IncludeUnknownFields, _ = flags.GetBool("include-unknown")
	}
	if v, _ := flags.GetString("naming"); v != "" {
		cfg.FieldNaming = v
	}
	if flags.Changed("drop-empty-modules") {
		cfg.DropEmptyModules, _ = flags.GetBool("drop-empty-modules")
	}
	if flags.Changed("sequential") {
		cfg.Sequential, _ = flags.GetBool("sequential")
	}
	if v, _ := flags.GetString("database"); v != "" {
		cfg.DatabasePath = v
	}
	if v, _ := flags.GetString("post-url"); v != "" {
		cfg.PostURL = v
	}
	if v, _ := flags.GetString("post-secret"); v != "" {
		cfg.PostSecret = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	opts := []collector.Option{collector.WithLogger(log)}
	if cfg.Sequential {
		opts = append(opts, collector.Sequential())
	}
	builder, err := collector.NewBuilder(collector.DefaultAdapters(), opts...)
	if err != nil {
		return err
	}
	gen, err := report.NewGenerator(cfg.ReportOptions())
	if err != nil {
		return err
	}

	targets, closeSinks, err := sinks(cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	p, err := pipeline.New(builder, gen, sink.Multi(targets...),
		pipeline.WithFormat(cfg.Format), pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	// Stop on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx, cfg.Output)
	if res != nil && len(res.Unknown) > 0 {
		names := make([]string, len(res.Unknown))
		for i, c := range res.Unknown {
			names[i] = c.String()
		}
		fmt.Fprintf(os.Stderr, "warning: hardware classes unknown: %s\n", strings.Join(names, ", "))
	}
	return err
}

// sinks builds the report destinations from cfg. The returned func closes
// the history database, if one was opened.
func sinks(cfg *config.Config, log zerolog.Logger) ([]sink.Target, func(), error) {
	var targets []sink.Target
	closer := func() {}

	if cfg.Output == "-" {
		targets = append(targets, sink.Target{Sink: sink.NewWriterSink(os.Stdout)})
	} else if cfg.Output != "" {
		targets = append(targets, sink.Target{Sink: sink.NewFileSink(nil)})
	}

	if cfg.DatabasePath != "" {
		db, err := store.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		closer = func() { db.Close() }

		hostname, _ := os.Hostname()
		storeOpts := []sink.StoreOption{sink.WithStoreLogger(log)}
		if cfg.RetentionDays > 0 {
			storeOpts = append(storeOpts, sink.WithRetention(time.Duration(cfg.RetentionDays)*24*time.Hour))
		}
		targets = append(targets, sink.Target{Sink: sink.NewStoreSink(db, hostname, cfg.Format, storeOpts...)})
	}

	if cfg.PostURL != "" {
		var httpOpts []sink.HTTPOption
		if cfg.PostSecret != "" {
			httpOpts = append(httpOpts, sink.WithHeader("X-Client-Secret", cfg.PostSecret))
		}
		post := sink.Retry(sink.NewHTTPSink(cfg.Format, httpOpts...), sink.RetryOptions{
			Attempts: cfg.PersistRetries + 1,
			Log:      log,
		})
		targets = append(targets, sink.Target{Sink: post, Path: cfg.PostURL})
	}

	return targets, closer, nil
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DatabasePath == "" {
		return nil, errors.New("no history database configured (set --database or database)")
	}
	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	recs, total, err := db.List(context.Background(), store.ListFilter{
		Hostname: historyHost,
		PageSize: historyLimit,
		Page:     historyPage,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	fmt.Printf("%-6s %-20s %-14s %-6s %-10s %-16s %s\n", "ID", "HOST", "DIGEST", "FORMAT", "SIZE", "COLLECTED", "UNKNOWN")
	for i := range recs {
		s := convert.RecordToSummary(&recs[i], now)
		fmt.Printf("%-6d %-20s %-14s %-6s %-10s %-16s %s\n",
			s.ID, s.Hostname, s.Digest, s.Format, s.Size, s.Collected, strings.Join(s.Unknown, ","))
	}
	fmt.Printf("%d of %d reports\n", len(recs), total)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid report id %q", args[0])
	}

	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.Get(context.Background(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("report %d not found", id)
	}
	if err != nil {
		return err
	}

	data := rec.Data
	if showFormat != "" && showFormat != rec.Format {
		m, err := convert.Decode(rec.Data, rec.Format)
		if err != nil {
			return err
		}
		c, err := codec.Get(showFormat)
		if err != nil {
			return err
		}
		if data, err = c.Marshal(m); err != nil {
			return fmt.Errorf("encode %s: %w", c.Name(), err)
		}
	}

	_, err = os.Stdout.Write(data)
	return err
}

func runPurge(cmd *cobra.Command, args []string) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Purge(context.Background(), time.Duration(purgeDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}

	fmt.Printf("Purged %d reports older than %d days\n", n, purgeDays)
	return nil
}
