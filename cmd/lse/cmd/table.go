package cmd

import (
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/lightsource/lse/pkg/resource"
)

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func stateCell(s resource.State) string {
	switch s {
	case resource.StateReady:
		return color.GreenString(s.String())
	case resource.StateError:
		return color.RedString(s.String())
	case resource.StateLoading:
		return color.YellowString(s.String())
	default:
		return s.String()
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
