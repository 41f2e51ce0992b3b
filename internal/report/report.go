// Package report renders scan results for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/looksee/registry"
	"github.com/kingrea/looksee/scanner"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("report: unknown format %q", value)
	}
}

// Item is the printable form of a registry entry.
type Item struct {
	Name   string `json:"name" yaml:"name"`
	Module string `json:"module" yaml:"module"`
	Kind   string `json:"kind" yaml:"kind"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Result is everything one scan produced.
type Result struct {
	Target      string               `json:"target" yaml:"target"`
	Items       []Item               `json:"items" yaml:"items"`
	Diagnostics []scanner.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewResult builds a Result from registry entries in registration order.
func NewResult(target string, entries []registry.Entry, diagnostics []scanner.Diagnostic) Result {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, ItemFromEntry(e))
	}
	return Result{Target: target, Items: items, Diagnostics: diagnostics}
}

// ItemFromEntry renders an entry's value for display. Functions and types
// are shown by signature since their values are not printable.
func ItemFromEntry(e registry.Entry) Item {
	item := Item{Name: e.Name, Module: e.Module, Kind: string(e.Kind)}
	if e.Type != nil {
		item.Type = e.Type.String()
	}
	switch {
	case e.Kind == scanner.KindType || e.Kind == scanner.KindFunc:
	case e.Value == nil:
	case e.Type != nil && e.Type.Kind() == reflect.Func:
	default:
		item.Value = fmt.Sprintf("%v", e.Value)
	}
	return item
}

// Write encodes res to w.
func Write(w io.Writer, format Format, res Result) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("report: encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("report: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		_, err := io.WriteString(w, Text(res))
		return err
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	kindColumnW  = 6
	severityMark = map[scanner.Severity]string{
		scanner.SeverityInfo:    "·",
		scanner.SeverityWarning: "!",
		scanner.SeverityError:   "✗",
	}
)

// Text renders res for a terminal.
func Text(res Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d object(s)", res.Target, len(res.Items))))
	b.WriteString("\n")

	width := 0
	for _, item := range res.Items {
		if l := len(item.Name); l > width {
			width = l
		}
	}
	for _, item := range res.Items {
		line := fmt.Sprintf("  %-*s %s %s",
			kindColumnW, item.Kind,
			nameStyle.Render(fmt.Sprintf("%-*s", width, item.Name)),
			mutedStyle.Render(item.Module),
		)
		if item.Value != "" {
			line += " = " + item.Value
		} else if item.Type != "" {
			line += " " + mutedStyle.Render(item.Type)
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}

	if len(res.Diagnostics) > 0 {
		diags := append([]scanner.Diagnostic(nil), res.Diagnostics...)
		sort.SliceStable(diags, func(i, j int) bool {
			return severityRank(diags[i].Severity) > severityRank(diags[j].Severity)
		})
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("%d diagnostic(s)", len(diags))))
		b.WriteString("\n")
		for _, d := range diags {
			style := mutedStyle
			switch d.Severity {
			case scanner.SeverityError:
				style = errorStyle
			case scanner.SeverityWarning:
				style = warnStyle
			}
			b.WriteString(style.Render(fmt.Sprintf("  %s %s", severityMark[d.Severity], d.Message)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func severityRank(s scanner.Severity) int {
	switch s {
	case scanner.SeverityError:
		return 2
	case scanner.SeverityWarning:
		return 1
	default:
		return 0
	}
}
