package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/thronescan/internal/config"
	"github.com/nao1215/thronescan/internal/database"
	"github.com/nao1215/thronescan/internal/model"
)

// Constants for trend directions.
const (
	trendUp   = "up"
	trendDown = "down"
	trendFlat = "flat"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded batches and player progress",
		Long: `History reads the batches recorded by 'thronescan process'.

Without flags, the latest two batches are compared player by player:
- Stat changes for players present in both batches
- Players that joined or left

Examples:
  # Compare the latest two batches
  thronescan history

  # List every recorded batch
  thronescan history --list

  # Compare the latest batch with batch 3
  thronescan history --with-batch-id 3

  # Show every recorded match of one player
  thronescan history --player TurboDedek

  # Output the comparison as JSON
  thronescan history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List recorded batches")
	cmd.Flags().StringP("player", "p", "",
		"Show the recorded matches of one player")
	cmd.Flags().Int64P("with-batch-id", "i", 0,
		"Compare the latest batch with a specific batch (use --list to see IDs)")

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// outputFormat selects how history results are printed.
type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
	formatMarkdown
)

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	format := formatText
	switch {
	case jsonOutput:
		format = formatJSON
	case markdownOutput:
		format = formatMarkdown
	}

	listBatches, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	player, err := flags.GetString("player")
	if err != nil {
		return err
	}
	withBatchID, err := flags.GetInt64("with-batch-id")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	// History never creates the database; only process records batches.
	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return fmt.Errorf("%w (run 'thronescan process' first)", err)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case listBatches:
		return listHistory(ctx, db, out, format)
	case strings.TrimSpace(player) != "":
		return showPlayerHistory(ctx, db, out, strings.TrimSpace(player), format)
	default:
		return runComparison(ctx, db, out, withBatchID, format)
	}
}

// listHistory lists every recorded batch, newest first.
func listHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, format outputFormat) error {
	batches, err := db.ListBatches(ctx, 0)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		return writeJSON(out, batches)
	case formatMarkdown:
		md := markdown.NewMarkdown(out)
		md.H1("Recorded Batches")
		md.PlainText("")
		rows := make([][]string, 0, len(batches))
		for _, b := range batches {
			rows = append(rows, []string{
				strconv.FormatInt(b.ID, 10),
				b.Date,
				string(b.FilterColor),
				strconv.Itoa(b.Summary.Players),
				strconv.Itoa(b.Summary.Warnings),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"ID", "Date", "Color", "Players", "Warnings"},
			Rows:   rows,
		})
		return md.Build()
	}

	if len(batches) == 0 {
		fmt.Fprintln(out, "No batches recorded.")
		fmt.Fprintln(out, "\nUse 'thronescan process' to record one.")
		return nil
	}

	fmt.Fprintf(out, "Recorded batches (%d):\n\n", len(batches))
	fmt.Fprintf(out, "  %-6s  %-20s  %-7s  %-8s  %s\n", "ID", "Date", "Color", "Players", "Warnings")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, b := range batches {
		fmt.Fprintf(out, "  %-6d  %-20s  %-7s  %-8d  %d\n",
			b.ID, b.Date, b.FilterColor, b.Summary.Players, b.Summary.Warnings)
	}
	fmt.Fprintln(out, "\nUse 'thronescan history --with-batch-id <id>' to compare the latest batch with another one.")
	return nil
}

// showPlayerHistory prints every recorded match of one player.
func showPlayerHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, name string, format outputFormat) error {
	records, err := db.PlayerHistory(ctx, name)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		return writeJSON(out, records)
	case formatMarkdown:
		md := markdown.NewMarkdown(out)
		md.H1("Player History: " + name)
		md.PlainText("")
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				r.Date, r.Team, r.Class,
				strconv.FormatInt(r.Kills, 10),
				strconv.FormatInt(r.Assists, 10),
				humanize.Comma(r.DamageDone),
				humanize.Comma(r.DamageReceived),
				humanize.Comma(r.Healing),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Date", "Team", "Class", "Kills", "Assists", "Damage Done", "Damage Received", "Healing"},
			Rows:   rows,
		})
		return md.Build()
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No recorded matches for %s\n", name)
		return nil
	}

	fmt.Fprintf(out, "History of %s (%d matches):\n\n", name, len(records))
	fmt.Fprintf(out, "  %-20s  %-8s  %-8s  %5s  %7s  %12s  %12s  %12s\n",
		"Date", "Team", "Class", "Kills", "Assists", "Damage", "Received", "Healing")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 96))
	for _, r := range records {
		fmt.Fprintf(out, "  %-20s  %-8s  %-8s  %5d  %7d  %12s  %12s  %12s\n",
			r.Date, r.Team, r.Class, r.Kills, r.Assists,
			humanize.Comma(r.DamageDone), humanize.Comma(r.DamageReceived), humanize.Comma(r.Healing))
	}
	return nil
}

// ComparisonResult holds the player by player difference between two
// batches.
type ComparisonResult struct {
	PreviousBatch BatchInfo `json:"previous_batch"`
	CurrentBatch  BatchInfo `json:"current_batch"`

	// Players lists players present in both batches, by name.
	Players []PlayerDelta `json:"players"`

	// NewPlayers appear in the current batch only.
	NewPlayers []string `json:"new_players,omitempty"`

	// MissingPlayers appear in the previous batch only.
	MissingPlayers []string `json:"missing_players,omitempty"`
}

// BatchInfo identifies a compared batch.
type BatchInfo struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Players  int    `json:"players"`
	Warnings int    `json:"warnings"`
}

// PlayerDelta holds the stat changes of one player.
type PlayerDelta struct {
	Name           string    `json:"name"`
	Class          string    `json:"class"`
	Kills          StatDelta `json:"kills"`
	Assists        StatDelta `json:"assists"`
	DamageDone     StatDelta `json:"damage_done"`
	DamageReceived StatDelta `json:"damage_received"`
	Healing        StatDelta `json:"healing"`
}

// StatDelta is one stat in both batches.
type StatDelta struct {
	Previous int64 `json:"previous"`
	Current  int64 `json:"current"`
	Delta    int64 `json:"delta"`
}

func newStatDelta(previous, current int64) StatDelta {
	return StatDelta{Previous: previous, Current: current, Delta: current - previous}
}

// runComparison compares the latest batch with the previous one, or with
// the batch withBatchID when it is set.
func runComparison(ctx context.Context, db *database.HistoryDB, out io.Writer, withBatchID int64, format outputFormat) error {
	latest, err := db.ListBatches(ctx, 2)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return errors.New("no batches recorded (use 'thronescan process' first)")
	}

	previousID := withBatchID
	if previousID == 0 {
		if len(latest) < 2 {
			return fmt.Errorf("at least 2 batches are required for comparison (found %d)", len(latest))
		}
		previousID = latest[1].ID
	}
	if previousID == latest[0].ID {
		return fmt.Errorf("batch %d is the latest batch; choose another one", previousID)
	}

	current, err := db.GetBatchByID(ctx, latest[0].ID)
	if err != nil {
		return err
	}
	previous, err := db.GetBatchByID(ctx, previousID)
	if err != nil {
		return err
	}
	if current == nil || previous == nil {
		return fmt.Errorf("batch %d not found", previousID)
	}

	result := compareBatches(previous, current)

	switch format {
	case formatJSON:
		return writeJSON(out, result)
	case formatMarkdown:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// compareBatches matches the players of both batches by name, ignoring case.
func compareBatches(previous, current *model.Batch) *ComparisonResult {
	result := &ComparisonResult{
		PreviousBatch: batchInfo(previous),
		CurrentBatch:  batchInfo(current),
	}

	before := make(map[string]*model.Player, len(previous.Players))
	for _, p := range previous.Players {
		before[strings.ToLower(p.Name)] = p
	}

	seen := make(map[string]bool, len(current.Players))
	for _, p := range current.Players {
		key := strings.ToLower(p.Name)
		seen[key] = true

		old, ok := before[key]
		if !ok {
			result.NewPlayers = append(result.NewPlayers, p.Name)
			continue
		}
		result.Players = append(result.Players, PlayerDelta{
			Name:           p.Name,
			Class:          p.Class,
			Kills:          newStatDelta(old.Kills, p.Kills),
			Assists:        newStatDelta(old.Assists, p.Assists),
			DamageDone:     newStatDelta(old.DamageDone, p.DamageDone),
			DamageReceived: newStatDelta(old.DamageReceived, p.DamageReceived),
			Healing:        newStatDelta(old.Healing, p.Healing),
		})
	}
	for _, p := range previous.Players {
		if !seen[strings.ToLower(p.Name)] {
			result.MissingPlayers = append(result.MissingPlayers, p.Name)
		}
	}

	slices.SortFunc(result.Players, func(a, b PlayerDelta) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	slices.Sort(result.NewPlayers)
	slices.Sort(result.MissingPlayers)

	return result
}

func batchInfo(b *model.Batch) BatchInfo {
	return BatchInfo{
		ID:       b.ID,
		Date:     b.Date,
		Players:  len(b.Players),
		Warnings: len(b.Warnings),
	}
}

// outputComparisonText prints the comparison in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintln(out, "Batch Comparison")
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "\nPrevious batch: #%d  %s  (%d players)\n",
		result.PreviousBatch.ID, result.PreviousBatch.Date, result.PreviousBatch.Players)
	fmt.Fprintf(out, "Current batch:  #%d  %s  (%d players)\n",
		result.CurrentBatch.ID, result.CurrentBatch.Date, result.CurrentBatch.Players)

	if len(result.Players) > 0 {
		fmt.Fprintln(out, "\nPlayers:")
		fmt.Fprintf(out, "  %-20s  %-8s  %-7s  %-7s  %-12s  %-12s  %-12s  %s\n",
			"Name", "Class", "Kills", "Assists", "Damage", "Received", "Healing", "Trend")
		fmt.Fprintln(out, "  "+strings.Repeat("-", 100))
		for _, p := range result.Players {
			fmt.Fprintf(out, "  %-20s  %-8s  %-7s  %-7s  %-12s  %-12s  %-12s  %s\n",
				p.Name, p.Class,
				formatDelta(p.Kills.Delta),
				formatDelta(p.Assists.Delta),
				formatDelta(p.DamageDone.Delta),
				formatDelta(p.DamageReceived.Delta),
				formatDelta(p.Healing.Delta),
				trend(p.Kills.Delta),
			)
		}
	}

	if len(result.NewPlayers) > 0 {
		fmt.Fprintf(out, "\nNew Players (%d):\n", len(result.NewPlayers))
		for _, name := range result.NewPlayers {
			fmt.Fprintf(out, "  [+] %s\n", name)
		}
	}
	if len(result.MissingPlayers) > 0 {
		fmt.Fprintf(out, "\nMissing Players (%d):\n", len(result.MissingPlayers))
		for _, name := range result.MissingPlayers {
			fmt.Fprintf(out, "  [-] %s\n", name)
		}
	}
	return nil
}

// outputComparisonMarkdown prints the comparison in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)
	md.H1("Batch Comparison")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Batch", "ID", "Date", "Players", "Warnings"},
		Rows: [][]string{
			{"Previous", strconv.FormatInt(result.PreviousBatch.ID, 10), result.PreviousBatch.Date,
				strconv.Itoa(result.PreviousBatch.Players), strconv.Itoa(result.PreviousBatch.Warnings)},
			{"Current", strconv.FormatInt(result.CurrentBatch.ID, 10), result.CurrentBatch.Date,
				strconv.Itoa(result.CurrentBatch.Players), strconv.Itoa(result.CurrentBatch.Warnings)},
		},
	})
	md.PlainText("")

	if len(result.Players) > 0 {
		md.H2("Players")
		md.PlainText("")
		rows := make([][]string, 0, len(result.Players))
		for _, p := range result.Players {
			rows = append(rows, []string{
				p.Name, p.Class,
				formatDelta(p.Kills.Delta),
				formatDelta(p.Assists.Delta),
				formatDelta(p.DamageDone.Delta),
				formatDelta(p.DamageReceived.Delta),
				formatDelta(p.Healing.Delta),
				trend(p.Kills.Delta),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Class", "Kills", "Assists", "Damage Done", "Damage Received", "Healing", "Trend"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(result.NewPlayers) > 0 {
		md.H2(fmt.Sprintf("New Players (%d)", len(result.NewPlayers)))
		md.BulletList(result.NewPlayers...)
	}
	if len(result.MissingPlayers) > 0 {
		md.H2(fmt.Sprintf("Missing Players (%d)", len(result.MissingPlayers)))
		md.BulletList(result.MissingPlayers...)
	}

	return md.Build()
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// trend returns the direction of a kill delta.
func trend(delta int64) string {
	switch {
	case delta > 0:
		return trendUp
	case delta < 0:
		return trendDown
	default:
		return trendFlat
	}
}

// formatDelta formats a numeric delta with sign and thousands separators.
func formatDelta(delta int64) string {
	if delta > 0 {
		return "+" + humanize.Comma(delta)
	}
	return humanize.Comma(delta)
}
