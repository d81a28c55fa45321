package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"flexstarter/internal/models"
)

// OutputFormatType defines the format types for the outcome report.
type OutputFormatType string

const (
	// OutputFormatTypeJSON represents JSON output format
	OutputFormatTypeJSON OutputFormatType = "JSON"
	// OutputFormatTypeTABLE represents table output format
	OutputFormatTypeTABLE OutputFormatType = "TABLE"
)

// RunReport represents the outcomes of one controller run.
type RunReport struct {
	Workflow string           `json:"workflow"`
	Outcomes []models.Outcome `json:"outcomes"`
}

// PrintOutcomes writes the outcome records of a run to w in the given
// format. Supported formats: "json" (machine-readable) and "table"
// (human-friendly).
func PrintOutcomes(w io.Writer, workflow string, outcomes []models.Outcome, outputFormat OutputFormatType) error {
	report := RunReport{
		Workflow: workflow,
		Outcomes: outcomes,
	}

	switch outputFormat {
	case OutputFormatTypeJSON:
		return printJSONReport(w, report)
	case OutputFormatTypeTABLE:
		return printTableReport(w, report)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

// printJSONReport prints the report in JSON format
func printJSONReport(w io.Writer, report RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling report to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printTableReport prints the report in a human-friendly table format
func printTableReport(w io.Writer, report RunReport) error {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(writer, "\nWORKFLOW:\t%s\n\n", report.Workflow)
	fmt.Fprintln(writer, "INSTANCE ID\tACTION\tFROM\tTO\tSTATUS\tREASON")
	fmt.Fprintln(writer, "-----------\t------\t----\t--\t------\t------")

	succeeded := 0
	for _, o := range report.Outcomes {
		if o.Status == models.StatusSucceeded {
			succeeded++
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.InstanceID,
			o.Action,
			formatValueForTable(o.FromType),
			formatValueForTable(o.ToType),
			o.Status,
			formatValueForTable(o.Reason))
	}

	fmt.Fprintln(writer, "")
	fmt.Fprintf(writer, "Summary: %d of %d instance(s) succeeded\n", succeeded, len(report.Outcomes))

	return writer.Flush()
}

// formatValueForTable formats values for better display in the table
func formatValueForTable(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// DefaultPrinter is the default implementation of the report printer,
// writing to standard output.
type DefaultPrinter struct{}

// PrintOutcomes implements the printer interface
func (p DefaultPrinter) PrintOutcomes(workflow string, outcomes []models.Outcome, format OutputFormatType) error {
	return PrintOutcomes(os.Stdout, workflow, outcomes, format)
}
