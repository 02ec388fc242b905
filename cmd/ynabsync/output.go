package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/eshaffer321/ynabsync/internal/filter"
	"github.com/eshaffer321/ynabsync/internal/reconcile"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#8A8A8A"})
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

func printSummary(w io.Writer, s *reconcile.Summary) {
	title := "Sync into " + s.Master
	if s.DryRun {
		title += " (dry run)"
	}
	_, _ = fmt.Fprintln(w, titleStyle.Render(title))

	since := "all history"
	if s.Since != nil {
		since = s.Since.String()
	}
	printInfof(w, "Since %s, run %s", since, mutedStyle.Render(s.RunID))

	if s.DryRun {
		for _, req := range s.Requests {
			printInfof(w, "%s %12s  %s  %s",
				req.Transaction.Date, req.Transaction.Amount.Format(s.Currency), req.Budget, mutedStyle.Render(req.Identifier))
		}
		printInfof(w, "%d transactions would be created", s.Planned)
	} else {
		msg := fmt.Sprintf("Created %d of %d", s.Created, s.Planned)
		if d := s.Duration(); d > 0 {
			msg += " in " + d.Round(time.Millisecond).String()
		}
		printSuccess(w, msg)
	}

	printInfof(w, "%d already mirrored", s.SkippedAsDuplicate)
	for _, reason := range filter.Reasons {
		if reason == filter.ReasonAlreadyMirrored || s.Excluded[reason] == 0 {
			continue
		}
		printInfof(w, "%d excluded (%s)", s.Excluded[reason], reason)
	}

	for _, f := range s.Failures {
		printError(w, f.Error())
	}
}
