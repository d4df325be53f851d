// Command seedaliases converts an allergen alias workbook into a SQL seed
// file. The first sheet holds two columns: family and alias. A header row
// is skipped when present.
// Usage: go run ./cmd/seedaliases -in aliases.xlsx
// Output: db/seeds/allergen_aliases.sql
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"safebite/internal/engine"
	"safebite/internal/port"
)

const batchSize = 500

func main() {
	in := flag.String("in", "allergen_aliases.xlsx", "alias workbook")
	out := flag.String("out", "db/seeds/allergen_aliases.sql", "output SQL file")
	flag.Parse()

	if err := run(*in, *out); err != nil {
		log.Fatal(err)
	}
}

func run(inPath, outPath string) error {
	f, err := excelize.OpenFile(inPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}

	entries, skipped := parseRows(rows)
	log.Printf("alias sheet: %d entries, %d rows skipped", len(entries), skipped)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSQL(out, entries); err != nil {
		return err
	}
	log.Printf("Generated %d aliases in %s", len(entries), outPath)
	return nil
}

// parseRows normalizes family/alias pairs, dropping blanks, invalid names,
// self-aliases and duplicates. Output is sorted by family then alias.
func parseRows(rows [][]string) ([]port.AliasEntry, int) {
	seen := make(map[port.AliasEntry]bool)
	var entries []port.AliasEntry
	skipped := 0

	for i, row := range rows {
		if len(row) < 2 {
			skipped++
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "family") {
			continue
		}
		family, ferr := engine.Normalize(row[0])
		alias, aerr := engine.Normalize(row[1])
		if ferr != nil || aerr != nil || family == alias {
			skipped++
			continue
		}
		e := port.AliasEntry{Family: family, Alias: alias}
		if seen[e] {
			continue
		}
		seen[e] = true
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Family != entries[j].Family {
			return entries[i].Family < entries[j].Family
		}
		return entries[i].Alias < entries[j].Alias
	})
	return entries, skipped
}

// writeSQL writes batched multi-row INSERTs that are safe to re-run.
func writeSQL(w io.Writer, entries []port.AliasEntry) error {
	header := fmt.Sprintf("-- Allergen alias seed data generated from Excel.\n-- %d aliases in batches of %d.\nBEGIN;\n", len(entries), batchSize)
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		var b strings.Builder
		b.WriteString("\nINSERT INTO allergen_aliases (family, alias) VALUES\n")
		for j, e := range entries[i:end] {
			if j > 0 {
				b.WriteString(",\n")
			}
			fmt.Fprintf(&b, "  ('%s', '%s')", escapeSQL(e.Family), escapeSQL(e.Alias))
		}
		b.WriteString("\nON CONFLICT (family, alias) DO NOTHING;\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	if _, err := io.WriteString(w, "\nCOMMIT;\n"); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	return nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
