package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/thronescan/internal/classify"
	"github.com/nao1215/thronescan/internal/config"
	"github.com/nao1215/thronescan/internal/registry"
)

// errNoOutputs is returned when a folder argument holds no batch output.
var errNoOutputs = errors.New("no batch output found")

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <file-or-folder>...",
		Short: "Re-apply the class registry to existing player CSV files",
		Long: `Classify rewrites player CSV files produced by earlier runs with the
current alias table and class registry, without running OCR again.

For every input, a <name>_with_classes.csv file is written next to it.
Names are resolved through the alias table and the class column is looked
up again. Files written before the class column existed get one inserted
after the name. Rows that are not player rows are copied unchanged.

A folder argument processes the output.csv of every batch folder beneath it.

Examples:
  # Reclassify one file
  thronescan classify matches/2025-09-03/output.csv

  # Reclassify every batch of a season with another registry
  thronescan classify matches/ --registry season2.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassifyCmd,
	}

	cmd.Flags().StringP("registry", "r", config.DefaultRegistryFile,
		"Name to class CSV file")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: searched in current, XDG config and home directories)")

	return cmd
}

// runClassifyCmd executes the classify command.
func runClassifyCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := loadConfigFile(cfg, configPath); err != nil {
		return err
	}
	if cmd.Flags().Changed("registry") {
		if cfg.RegistryFile, err = cmd.Flags().GetString("registry"); err != nil {
			return err
		}
	}

	logger := newLogger(os.Stderr, getVerboseFlag(cmd), getLogJSONFlag(cmd))

	paths, err := classifyTargets(args)
	if err != nil {
		return err
	}

	classes, err := registry.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	classifier := classify.New(classes,
		classify.WithAliases(cfg.Rules.AliasTable()),
		classify.WithLogger(logger),
	)

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		outPath, stats, err := classifier.ApplyFile(path)
		if err != nil {
			logger.Error("classification failed", "input", path, "error", err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s -> %s (%d rows, %d updated, %d unknown, %d copied)\n",
			path, outPath, stats.Rows, stats.Updated, stats.Unknown, stats.Copied)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be classified", failed, len(paths))
	}
	return nil
}

// classifyTargets expands folder arguments into the batch outputs they
// contain. File arguments are kept as given.
func classifyTargets(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		outputs, err := classify.FindOutputs(arg, config.DefaultOutputFile)
		if err != nil {
			return nil, err
		}
		if len(outputs) == 0 {
			return nil, fmt.Errorf("%w under %s", errNoOutputs, arg)
		}
		paths = append(paths, outputs...)
	}
	return paths, nil
}
