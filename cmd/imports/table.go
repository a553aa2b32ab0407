package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/worker"
)

const timeFormat = "2006-01-02 15:04:05"

var statusColors = map[string]text.Colors{
	models.ImportJobStatusPending:          {text.FgHiBlack},
	models.ImportJobStatusProcessing:       {text.FgCyan},
	models.ImportJobStatusAwaitingApproval: {text.FgYellow},
	models.ImportJobStatusCompleted:        {text.FgGreen},
	models.ImportJobStatusFailed:           {text.FgRed},
}

type renderer struct {
	out      io.Writer
	colorize bool
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out, colorize: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (r *renderer) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	if r.colorize {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	return tw
}

func (r *renderer) status(s string) string {
	if !r.colorize {
		return s
	}
	if c, ok := statusColors[s]; ok {
		return c.Sprint(s)
	}
	return s
}

func (r *renderer) jobs(jobs []*models.ImportJob, total int) {
	tw := r.newTable()
	tw.AppendHeader(table.Row{"ID", "Status", "File", "Best candidate", "Score", "Created"})
	for _, job := range jobs {
		best, score := "", ""
		if len(job.Candidates) > 0 {
			c := job.Candidates[0]
			best = c.Title + " / " + c.Author
			score = formatScore(c.ConfidenceScore)
		}
		tw.AppendRow(table.Row{job.ID, r.status(job.Status), job.FilePath, best, score, job.CreatedAt.Local().Format(timeFormat)})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "Total", total})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	tw.Render()
}

func (r *renderer) job(job *models.ImportJob) {
	fmt.Fprintf(r.out, "Import job %d: %s\n", job.ID, r.status(job.Status))
	fmt.Fprintf(r.out, "File:    %s\n", job.FilePath)
	fmt.Fprintf(r.out, "Hash:    %s\n", job.FileHash)
	fmt.Fprintf(r.out, "Created: %s\n", job.CreatedAt.Local().Format(timeFormat))
	fmt.Fprintf(r.out, "Updated: %s\n", job.UpdatedAt.Local().Format(timeFormat))
	if job.Book != nil {
		fmt.Fprintf(r.out, "Book:    %s / %s -> %s\n", job.Book.Title, job.Book.Author, job.Book.FilePath)
	}

	if len(job.Candidates) == 0 {
		fmt.Fprintln(r.out, "No candidates.")
		return
	}

	tw := r.newTable()
	tw.AppendHeader(table.Row{"ID", "Score", "Title", "Author", "Source", "External ID"})
	for _, c := range job.Candidates {
		tw.AppendRow(table.Row{c.ID, formatScore(c.ConfidenceScore), c.Title, c.Author, c.Source, c.ExternalID})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})
	tw.Render()
}

func (r *renderer) logs(logs []*models.JobLog) {
	tw := r.newTable()
	tw.AppendHeader(table.Row{"ID", "Time", "Level", "Message", "Data"})
	for _, l := range logs {
		data := ""
		if l.Data != nil {
			data = *l.Data
		}
		tw.AppendRow(table.Row{l.ID, l.CreatedAt.Local().Format(timeFormat), strings.ToUpper(l.Level), l.Message, data})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 60},
	})
	tw.Render()
}

func (r *renderer) scan(result *worker.ScanResult) {
	if result.Skipped {
		fmt.Fprintln(r.out, "Another scan is running; nothing was done.")
		return
	}
	tw := r.newTable()
	tw.AppendHeader(table.Row{"Files", "Created", "Duplicates", "Retried", "Errors"})
	tw.AppendRow(table.Row{result.Files, result.Created, result.Duplicates, result.Retried, result.Errors})
	tw.Render()
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}
