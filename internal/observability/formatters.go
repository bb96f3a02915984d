// Package observability provides formatted progress output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/incident-generator/internal/generator"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxSoftErrorsToShow caps the dropped-record details printed per batch
	maxSoftErrorsToShow = 5
)

// Printer handles formatted output for run progress and verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunHeader outputs the run parameters before generation starts.
func (p *Printer) PrintRunHeader(provider, model string, state *generator.State, batchSize, numWorkers int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Provider:   %s\n", provider))
	sb.WriteString(fmt.Sprintf("Model:      %s\n", model))
	sb.WriteString(fmt.Sprintf("Target:     %d incidents\n", state.Target))
	sb.WriteString(fmt.Sprintf("Resumed:    %d already present\n", state.Count()))
	sb.WriteString(fmt.Sprintf("Batch size: %d\n", batchSize))
	sb.WriteString(fmt.Sprintf("Workers:    %d", numWorkers))
	p.printBox("INCIDENT GENERATION", sb.String())
}

// PrintBatch outputs one progress line per completed batch, with dropped
// record details when validation rejected part of the batch.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBatch(result generator.BatchResult) {
	fmt.Fprintf(p.out, "✓ Batch accepted %d/%d records (progress %d/%d)\n",
		result.Accepted, result.Requested, result.Count, result.Target)

	for i, soft := range result.SoftErrors {
		if i == maxSoftErrorsToShow {
			fmt.Fprintf(p.out, "  ... and %d more dropped records\n", len(result.SoftErrors)-maxSoftErrorsToShow)
			break
		}
		fmt.Fprintf(p.out, "  ✗ dropped record %d: %s\n", soft.Index, strings.Join(soft.Reasons, "; "))
	}
}

// PrintSummary outputs the final run totals.
func (p *Printer) PrintSummary(state *generator.State, summary *generator.Summary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Accumulated:    %d/%d incidents\n", state.Count(), state.Target))
	sb.WriteString(fmt.Sprintf("This run:       %d generated\n", summary.Generated))
	sb.WriteString(fmt.Sprintf("Soft errors:    %d records dropped\n", summary.SoftErrors))
	sb.WriteString(fmt.Sprintf("Failed batches: %d", summary.FailedBatches))
	p.printBox("GENERATION COMPLETE", sb.String())
}

// PrintPrompt dumps a prompt in verbose mode.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPrompt(label, prompt string) {
	border := strings.Repeat("=", boxWidth)
	fmt.Fprintf(p.out, "%s\n%s\n%s\n%s\n%s\n", border, label, border, prompt, border)
}
