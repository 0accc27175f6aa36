package utils

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// RenderTable draws rows as a plain text table. The header is the first row.
func RenderTable(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	if err := table.Append(header); err != nil {
		return "", fmt.Errorf("append header row: %w", err)
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return "", fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return buf.String(), nil
}

// CodeBlock wraps text in a Discord code block.
func CodeBlock(text string) string {
	return "```\n" + text + "```"
}
