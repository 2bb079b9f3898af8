package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/thronescan/internal/config"
	"github.com/nao1215/thronescan/internal/database"
	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/ocr"
	"github.com/nao1215/thronescan/internal/pipeline"
	"github.com/nao1215/thronescan/internal/recognize"
	"github.com/nao1215/thronescan/internal/registry"
	"github.com/nao1215/thronescan/internal/report"
	"github.com/nao1215/thronescan/internal/validate"
)

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [image-folder]",
		Short: "Extract player records from leaderboard screenshots",
		Long: `Process reads every screenshot of a folder with Tesseract and turns the
leaderboard rows into player records.

Each row must carry a name, a color marker (Jaune/Yellow or Rouge/Red) and
five numbers: kills, assists, damage done, damage received and healing.
Rows whose marker matches --color belong to the Suits team, every other row
to the enemy team. Classes come from the class registry (--registry).

Outputs:
- output.csv: one line per player, sorted by kills
- errors.csv: malformed lines, players of unknown class, flagged players
- tesseract_output.txt: the raw OCR text, for --from-text replays

A summary is printed at the end and the batch is stored in the history
database unless --no-db is given.

Examples:
  # Process a folder of screenshots where our team is yellow
  thronescan process ./screenshots --color y

  # Use French OCR data and a fixed match date
  thronescan process ./screenshots --lang fra --date "2025-09-03 21:00"

  # Replay a saved OCR dump after fixing the class registry
  thronescan process --from-text tesseract_output.txt

  # Write a Markdown summary next to the CSV files and show it too
  thronescan process ./screenshots --markdown --report-file summary.md --tee`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProcessCmd,
	}

	// Input flags
	cmd.Flags().StringSliceP("from-text", "t", nil,
		"Process saved OCR text files instead of images")
	cmd.Flags().StringP("lang", "l", ocr.DefaultLanguage,
		"Tesseract language, several joined with '+' (e.g. eng+fra)")
	cmd.Flags().String("tessdata", "",
		"Tesseract language data directory (default: $TESSDATA_PREFIX)")

	// Recognition flags
	cmd.Flags().String("color", string(model.ColorYellow),
		"Color of the friendly team marker: y, yellow, r or red")
	cmd.Flags().String("enemy", model.DefaultEnemyLabel,
		"Team label for players of the other color")
	cmd.Flags().StringP("date", "d", "",
		"Match date, yyyy-MM-dd or yyyy-MM-dd HH:mm (default: capture time of the earliest screenshot)")
	cmd.Flags().StringP("registry", "r", config.DefaultRegistryFile,
		"Name to class CSV file")
	cmd.Flags().String("merge", recognize.KeepFirst.String(),
		"Record kept when a name repeats: keep-first or keep-last")
	cmd.Flags().IntP("workers", "w", config.NewConfig().Workers,
		"Number of screenshots read at once")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Player CSV output file")
	cmd.Flags().StringP("errors", "e", config.DefaultDiagnosticsFile,
		"Diagnostics CSV output file")
	cmd.Flags().String("raw-output", config.DefaultRawTextFile,
		"Raw OCR text output file (empty to disable)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Print the summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the summary to a file instead of stdout")
	cmd.Flags().Bool("tee", false,
		"With --report-file, print the summary to stdout as well")

	// History flags
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().Bool("no-db", false,
		"Do not record the batch in the history database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: searched in current, XDG config and home directories)")

	return cmd
}

// runProcessCmd executes the process command.
func runProcessCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runProcess(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogJSONFlag retrieves the log-json flag from the command or its parent.
func getLogJSONFlag(cmd *cobra.Command) bool {
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		logJSON, err = cmd.Root().PersistentFlags().GetBool("log-json")
		if err != nil {
			return false
		}
	}
	return logJSON
}

// loadConfigFile seeds cfg from the configuration file. An explicit path
// that does not exist is an error; a missing default file is not.
func loadConfigFile(cfg *config.Config, explicitPath string) error {
	cfg.ConfigFilePath = explicitPath

	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	if err := file.Apply(cfg); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// buildConfig creates a Config from the configuration file and the cobra
// command flags. Flags only override the file when set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg, configPath); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.ImageDir = args[0]
	}
	if cfg.TextFiles, err = flags.GetStringSlice("from-text"); err != nil {
		return nil, err
	}

	if flags.Changed("lang") {
		if cfg.Language, err = flags.GetString("lang"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tessdata") {
		if cfg.TessdataDir, err = flags.GetString("tessdata"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("enemy") {
		if cfg.EnemyLabel, err = flags.GetString("enemy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("registry") {
		if cfg.RegistryFile, err = flags.GetString("registry"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("color") {
		value, err := flags.GetString("color")
		if err != nil {
			return nil, err
		}
		color, ok := model.ParseColor(value)
		if !ok {
			return nil, fmt.Errorf("%w: %q", config.ErrInvalidColor, value)
		}
		cfg.FilterColor = color
	}
	if flags.Changed("merge") {
		value, err := flags.GetString("merge")
		if err != nil {
			return nil, err
		}
		policy, ok := recognize.ParseMergePolicy(value)
		if !ok {
			return nil, fmt.Errorf("%w: %q", config.ErrInvalidMergePolicy, value)
		}
		cfg.MergePolicy = policy
	}

	dateArg, err := flags.GetString("date")
	if err != nil {
		return nil, err
	}
	if dateArg != "" {
		if cfg.Date, err = config.NormalizeDate(dateArg); err != nil {
			return nil, fmt.Errorf("%w: %q (use yyyy-MM-dd or yyyy-MM-dd HH:mm)", err, dateArg)
		}
	}

	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.DiagnosticsFile, err = flags.GetString("errors"); err != nil {
		return nil, err
	}
	if cfg.RawTextFile, err = flags.GetString("raw-output"); err != nil {
		return nil, err
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.TeeReport, err = flags.GetBool("tee"); err != nil {
		return nil, err
	}

	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = getLogJSONFlag(cmd)

	return cfg, nil
}

// runProcess processes one batch: it extracts the text, recognizes and
// validates the players, writes the output files, prints the summary and
// records the batch.
func runProcess(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	// The registry is needed before the first line is classified, so a
	// missing file stops the run before any OCR work.
	classes, err := registry.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}
	logger.Info("class registry loaded", "path", cfg.RegistryFile, "players", classes.Len())

	source, paths, err := newSource(cfg, logger)
	if err != nil {
		return err
	}

	date := cfg.Date
	if date == "" {
		date = defaultDate(cfg, paths)
		logger.Info("no date given", "date", date)
	}

	batch := model.NewBatch(date, cfg.FilterColor, cfg.EnemyLabel)

	aliases := cfg.Rules.AliasTable()
	logger.Debug("alias table ready", "aliases", aliases.Len())

	recognizer := recognize.New(cfg.FilterColor, classes,
		recognize.WithAliases(aliases),
		recognize.WithEnemyLabel(cfg.EnemyLabel),
		recognize.WithMergePolicy(cfg.MergePolicy),
		recognize.WithLogger(logger),
	)
	validator := validate.New(validate.WithLogger(logger))

	p := pipeline.DefaultPipeline(source, recognizer, validator, pipeline.WithLogger(logger))

	logger.Info("starting batch",
		"inputs", len(paths),
		"color", cfg.FilterColor,
		"date", date,
		"workers", cfg.Workers,
	)
	startTime := time.Now()

	if err := p.Execute(ctx, batch); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	batch.CompletedAt = time.Now()
	logger.Info("batch completed", "elapsed", batch.CompletedAt.Sub(startTime).Round(time.Millisecond))

	if err := writeOutputs(cfg, batch); err != nil {
		return err
	}

	if err := outputReport(cfg, batch, out); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if cfg.SaveToDB {
		return saveBatch(ctx, cfg.DBDir, batch, logger)
	}
	return nil
}

// newSource returns the pipeline step producing the batch text and the
// input files it reads.
func newSource(cfg *config.Config, logger *slog.Logger) (pipeline.Step, []string, error) {
	var (
		engine ocr.Engine
		paths  []string
	)

	if len(cfg.TextFiles) > 0 {
		engine = ocr.NewTextFileEngine()
		paths = cfg.TextFiles
	} else {
		images, err := ocr.ListImages(cfg.ImageDir)
		if err != nil {
			return nil, nil, err
		}
		engine = ocr.NewTesseractEngine(
			ocr.WithLanguage(cfg.Language),
			ocr.WithTessdataPrefix(cfg.TessdataDir),
		)
		paths = images
	}

	extractor := pipeline.NewExtractor(engine,
		pipeline.WithConcurrency(cfg.Workers),
		pipeline.WithExtractorLogger(logger),
	)
	return pipeline.NewExtractStep(extractor, paths, logger), paths, nil
}

// defaultDate returns the capture time of the earliest screenshot, or the
// current time when no screenshot carries one.
func defaultDate(cfg *config.Config, paths []string) string {
	if cfg.ImageDir != "" {
		if t, ok := ocr.EarliestCaptureTime(paths); ok {
			return config.FormatDate(t)
		}
	}
	return config.FormatDate(time.Now())
}

// writeOutputs writes the player CSV, the diagnostics CSV and, for image
// input, the raw OCR text.
func writeOutputs(cfg *config.Config, batch *model.Batch) error {
	if err := report.WriteFile(cfg.OutputFile, batch, func(w io.Writer) report.Writer {
		return report.NewCSVWriter(w)
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.OutputFile, err)
	}

	if err := report.WriteFile(cfg.DiagnosticsFile, batch, func(w io.Writer) report.Writer {
		return report.NewDiagnosticsWriter(w)
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.DiagnosticsFile, err)
	}

	// Text input is already a dump; rewriting it would only reformat it.
	if cfg.RawTextFile != "" && cfg.ImageDir != "" {
		if err := report.WriteFile(cfg.RawTextFile, batch, func(w io.Writer) report.Writer {
			return report.NewRawTextWriter(w)
		}); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.RawTextFile, err)
		}
	}
	return nil
}

// newReportWriter returns the summary writer selected by cfg.
func newReportWriter(cfg *config.Config) func(io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return func(w io.Writer) report.Writer {
			return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
		}
	case cfg.MarkdownReport:
		return func(w io.Writer) report.Writer {
			return report.NewMarkdownWriter(w)
		}
	default:
		return func(w io.Writer) report.Writer {
			return report.NewTextWriter(w, report.WithVerbose(cfg.Verbose))
		}
	}
}

// outputReport prints the batch summary to out or to the report file.
// With TeeReport the summary goes to both.
func outputReport(cfg *config.Config, batch *model.Batch, out io.Writer) error {
	newWriter := newReportWriter(cfg)

	if cfg.ReportFile == "" {
		_, err := newWriter(out).Write(batch)
		return err
	}

	if err := writeReportFile(cfg, batch, newWriter, out); err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s\n", cfg.ReportFile)
	return nil
}

// writeReportFile writes the summary to cfg.ReportFile, and to out as well
// when cfg.TeeReport is set.
func writeReportFile(cfg *config.Config, batch *model.Batch, newWriter func(io.Writer) report.Writer, out io.Writer) (err error) {
	f, err := report.CreateFile(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := newWriter(f)
	if cfg.TeeReport {
		w = report.NewMultiWriter(newWriter(out), w)
	}
	_, err = w.Write(batch)
	return err
}

// saveBatch records batch in the history database. A batch whose text was
// already imported is reported and not stored twice.
func saveBatch(ctx context.Context, dbDir string, batch *model.Batch, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	existing, err := db.FindByFingerprint(ctx, batch.Fingerprint)
	if err != nil {
		logger.Error("failed to look up batch", "error", err)
	} else if existing != nil {
		logger.Warn("identical OCR text already imported, batch not recorded again",
			"batch_id", existing.ID,
			"date", existing.Date,
			"imported", existing.Timestamp.Format(config.DateLayout),
		)
		return nil
	}

	id, err := db.SaveBatch(ctx, batch)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		logger.Error("failed to save batch", "error", err)
		return nil
	}
	logger.Info("batch recorded", "batch_id", id, "db", db.Path())
	return nil
}
