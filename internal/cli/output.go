package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	v1 "github.com/shenikar/resqnet/internal/handler/http/v1"
	"github.com/shenikar/resqnet/internal/triage"
)

const (
	formatHuman = "human"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatHuman, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format %q (supported: human, json, yaml)", format)
}

// writeEvaluation печатает результат оценки в выбранном формате
func writeEvaluation(w io.Writer, e triage.Evaluation, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, e)
	case formatYAML:
		return writeYAML(w, e)
	}

	fmt.Fprintln(w)
	severityColor(string(e.Priority.Severity)).Fprintf(w, "SEVERITY: %s (score %d)\n", strings.ToUpper(string(e.Priority.Severity)), e.Priority.Score)
	writeBundle(w, e.Suggestions.Actions, e.Suggestions.Resources, e.Suggestions.Supplies)
	return nil
}

// writeReport печатает сохраненный отчет
func writeReport(w io.Writer, r *v1.ReportResponse, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, r)
	case formatYAML:
		return writeYAML(w, r)
	}

	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintf(w, "REPORT %s\n", r.ID)
	fmt.Fprintf(w, "   Source:   %s\n", r.ImageSource)
	fmt.Fprintf(w, "   Image:    %s\n", r.ImagePath)
	if r.LocationName != "" {
		fmt.Fprintf(w, "   Location: %s\n", r.LocationName)
	}
	if r.Latitude != nil && r.Longitude != nil {
		fmt.Fprintf(w, "   Coords:   %.5f, %.5f\n", *r.Latitude, *r.Longitude)
	}
	fmt.Fprintf(w, "   Analyzer: %s (confidence %.2f)\n", r.Analyzer, r.Confidence)
	if len(r.DamageTypes) > 0 {
		fmt.Fprintf(w, "   Damage:   %s\n", strings.Join(r.DamageTypes, ", "))
	}
	if r.IsEmergency {
		color.New(color.FgRed, color.Bold).Fprintf(w, "   SOS:      %s\n", r.SOSType)
	}
	fmt.Fprintln(w)

	severityColor(r.Severity).Fprintf(w, "SEVERITY: %s (score %d)\n", strings.ToUpper(r.Severity), r.PriorityScore)
	writeBundle(w, r.SuggestedActions, r.RequiredResources, r.SuggestedSupplies)
	return nil
}

func writeBundle(w io.Writer, actions, resources, supplies []string) {
	white := color.New(color.FgWhite, color.Bold)
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintln(w)
		white.Fprintln(w, title)
		for i, item := range items {
			fmt.Fprintf(w, "   %d. %s\n", i+1, item)
		}
	}

	section("ACTIONS:", actions)
	section("RESOURCES:", resources)
	section("SUPPLIES:", supplies)
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func writeYAML(w io.Writer, v any) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func severityColor(severity string) *color.Color {
	switch triage.Severity(severity) {
	case triage.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case triage.SeverityMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func printSuccess(w io.Writer, msg string) {
	color.New(color.FgGreen).Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	color.New(color.FgRed).Fprintf(w, "✗ %s\n", msg)
}
