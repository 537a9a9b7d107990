package outwriter

import (
	"fmt"
	"io"
	"strings"
)

// Markdown rendering is intentionally template-free: a fixed sequence of
// Fprintf calls keeps the output deterministic and trivially diffable
// across runs.

func writeMarkdownRow(w io.Writer, cells []string) error {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", "\\|")
	}
	_, err := fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
	return err
}

func writeMarkdownSeparator(w io.Writer, columns int) error {
	parts := make([]string, columns)
	for i := range parts {
		parts[i] = "---"
	}
	_, err := fmt.Fprintf(w, "| %s |\n", strings.Join(parts, " | "))
	return err
}

func joinWith(parts []string, sep string) string {
	return strings.Join(parts, sep)
}
