package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func toTableRow(values []string, columns int) table.Row {
	r := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(values) {
			r[i] = values[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

// renderTable renders headers/rows as a rounded-border table, right-aligning
// any column named in aligns and appending a trailing "N rows" footer once
// there is more than one data row, since the status command's outcome
// listing is the one table long enough for a count to matter.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toTableRow(headers, columns))

	for _, row := range rows {
		tw.AppendRow(toTableRow(row, columns))
	}

	columnConfigs := make([]table.ColumnConfig, columns)
	for i := range columnConfigs {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(columnConfigs)

	if len(rows) > 1 {
		footer := make(table.Row, columns)
		footer[0] = fmt.Sprintf("%d rows", len(rows))
		tw.AppendFooter(footer)
	}

	return tw.Render()
}
