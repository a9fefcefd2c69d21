// Inspect is a low-level diagnostic tool that dumps the class and
// age-band coverage of an allowance rate file, marking the gaps that
// will render as blank cells.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/reecedigiacomo/allowance/allowance"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inspect <file>")
		os.Exit(1)
	}
	path := os.Args[1]

	classes, table, err := allowance.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	bands := allowance.AgeBands()
	known := make(map[string]bool, len(bands))
	for _, band := range bands {
		known[band] = true
	}

	fmt.Printf("Rate file: %s\n", path)
	fmt.Printf("Classes:   %d\n\n", len(classes))

	for _, class := range classes {
		rows := table[class]
		fmt.Printf("%s  (anchor %q, %d/%d age bands)\n",
			class, allowance.Anchor(class), len(rows), len(bands))

		var missing []string
		for _, band := range bands {
			row, ok := rows[band]
			if !ok {
				missing = append(missing, band)
				continue
			}
			// Flag partially filled rows: present but with empty
			// rate fields.
			var empty []string
			for _, field := range allowance.RateFields {
				if row.Field(field) == "" {
					empty = append(empty, field)
				}
			}
			if len(empty) > 0 && len(empty) < len(allowance.RateFields) {
				fmt.Printf("  age %-3s missing: %s\n", band, strings.Join(empty, ", "))
			}
		}
		if len(missing) > 0 {
			fmt.Printf("  no data for ages: %s\n", summarizeBands(missing))
		}

		// Stray age keys indicate a malformed ageFrom column.
		for key := range rows {
			if !known[key] {
				fmt.Printf("  Warning: out-of-range age key %q (will not render)\n", key)
			}
		}
		fmt.Println()
	}
}

// summarizeBands collapses consecutive single-year ages into ranges
// ("20, 25-40, 64+") to keep the report readable.
func summarizeBands(bands []string) string {
	var parts []string
	var start, prev int
	inRun := false

	flush := func() {
		if !inRun {
			return
		}
		if start == prev {
			parts = append(parts, fmt.Sprintf("%d", start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
		inRun = false
	}

	for _, band := range bands {
		age, err := strconv.Atoi(band)
		if err != nil {
			flush()
			parts = append(parts, band)
			continue
		}
		if inRun && age == prev+1 {
			prev = age
			continue
		}
		flush()
		start, prev, inRun = age, age, true
	}
	flush()
	return strings.Join(parts, ", ")
}
