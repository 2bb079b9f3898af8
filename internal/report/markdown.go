package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/thronescan/internal/model"
)

// MarkdownWriter outputs a batch as GitHub Flavored Markdown: batch
// details, counts with a team split chart, the player table and every
// diagnostic.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the batch in Markdown format.
func (w *MarkdownWriter) Write(batch *model.Batch) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := batch.Summarize()

	w.writeHeader(md, batch)
	w.writeSummary(md, batch.EnemyLabel, summary)
	w.writePlayers(md, batch)
	w.writeWarnings(md, batch)
	w.writeDiagnostics(md, batch)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the batch details table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, batch *model.Batch) {
	md.H1("Thronescan Batch Report")
	md.PlainText("")

	fingerprint := "-"
	if batch.Fingerprint != "" {
		fingerprint = "`" + shortFingerprint(batch.Fingerprint) + "`"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Date", batch.Date},
			{"Friendly Color", string(batch.FilterColor)},
			{"Inputs", strconv.Itoa(len(batch.Sources))},
			{"Fingerprint", fingerprint},
			{"Status", statusText(batch)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on batch state.
func statusText(batch *model.Batch) string {
	if batch.ErrorMessage != "" {
		return "❌ Error - " + batch.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the count table, the team chart and an alert.
// enemyLabel names the opposing team in the table and the chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, enemyLabel string, s model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows: [][]string{
			{"Players (" + model.TeamSuits + ")", strconv.Itoa(s.Suits)},
			{"Players (" + enemyLabel + ")", strconv.Itoa(s.Enemies)},
			{"Malformed lines", strconv.Itoa(s.Malformed)},
			{"Unknown class", strconv.Itoa(s.UnknownClass)},
			{"Flagged players", strconv.Itoa(s.Flagged)},
			{"Warnings", strconv.Itoa(s.Warnings)},
			{"Failed inputs", strconv.Itoa(s.FailedImages)},
		},
	})
	md.PlainText("")

	if s.Players > 0 {
		w.writePieChart(md, enemyLabel, s)
	}

	switch {
	case s.FailedImages > 0:
		md.Cautionf("%d input(s) could not be read. Their players are missing from this batch.", s.FailedImages)
	case s.Flagged > 0:
		md.Warningf("%d player(s) have implausible statistics. Check them against the screenshots.", s.Flagged)
	case s.Malformed > 0:
		md.Importantf("%d line(s) could not be parsed and were written to the diagnostics file.", s.Malformed)
	case s.UnknownClass > 0:
		md.Note(strconv.Itoa(s.UnknownClass) + " player(s) are missing from the class registry.")
	default:
		md.Tip("Every line was recognized and every player looks plausible.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the team split.
// Mermaid slice labels are quoted, so double quotes in enemyLabel become
// single quotes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, enemyLabel string, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Team Split"),
		piechart.WithShowData(true),
	)
	if s.Suits > 0 {
		chart.LabelAndIntValue(model.TeamSuits, uint64(s.Suits))
	}
	if s.Enemies > 0 {
		chart.LabelAndIntValue(strings.ReplaceAll(enemyLabel, `"`, "'"), uint64(s.Enemies))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePlayers writes the player table in output order.
func (w *MarkdownWriter) writePlayers(md *markdown.Markdown, batch *model.Batch) {
	md.H2("Players")
	md.PlainText("")

	if len(batch.Players) == 0 {
		md.PlainText("No players recognized.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(batch.Players))
	for i, p := range batch.Players {
		rows[i] = []string{
			p.Name,
			p.Team,
			p.Class,
			humanize.Comma(p.Kills),
			humanize.Comma(p.Assists),
			humanize.Comma(p.DamageDone),
			humanize.Comma(p.DamageReceived),
			humanize.Comma(p.Healing),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Team", "Class", "Kills", "Assists", "Damage Done", "Damage Received", "Healing"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeWarnings writes one row per rule violation.
func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, batch *model.Batch) {
	if len(batch.Warnings) == 0 {
		return
	}

	md.H2("Warnings")
	md.PlainText("")

	rows := make([][]string, len(batch.Warnings))
	for i, warn := range batch.Warnings {
		rows[i] = []string{warn.Player, warn.Class, warn.Rule.Message(), humanize.Comma(warn.Value)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Player", "Class", "Rule", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDiagnostics lists malformed lines and unknown-class players.
func (w *MarkdownWriter) writeDiagnostics(md *markdown.Markdown, batch *model.Batch) {
	malformed := batch.DiagnosticsOf(model.DiagnosticMalformed)
	unknown := batch.DiagnosticsOf(model.DiagnosticUnknownClass)
	if len(malformed) == 0 && len(unknown) == 0 {
		return
	}

	md.H2("Diagnostics")
	md.PlainText("")

	if len(unknown) > 0 {
		md.H3("Unknown Class")
		md.PlainText("")
		names := make([]string, len(unknown))
		for i, d := range unknown {
			names[i] = d.Player.Name + " (" + d.Player.Team + ")"
		}
		md.BulletList(names...)
		md.PlainText("")
	}

	if len(malformed) > 0 {
		md.H3("Malformed Lines")
		md.PlainText("")
		rows := make([][]string, len(malformed))
		for i, d := range malformed {
			rows[i] = []string{strconv.Itoa(d.Line), strconv.Itoa(d.Cells), "`" + d.Text + "`"}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Line", "Cells", "Text"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by thronescan*")
}
