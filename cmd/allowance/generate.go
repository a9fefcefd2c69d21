// generate.go implements the CLI commands that load a rate file and
// produce the formatted document.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reecedigiacomo/allowance/allowance"
	"github.com/reecedigiacomo/allowance/document"
	"github.com/reecedigiacomo/allowance/internal/config"
)

// defaultOutput is used when --out is not given.
const defaultOutput = "ICHRA_Allowance_Model.pdf"

// generateOptions holds the parsed generate command flags.
type generateOptions struct {
	input   string
	out     string
	banner  string
	classes []string
}

// parseGenerateArgs reads the positional input argument and flags.
func parseGenerateArgs(cfg config.Config, args []string) (generateOptions, error) {
	opts := generateOptions{
		input:  args[0],
		out:    defaultOutput,
		banner: cfg.Banner,
	}
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--out":
			if i+1 >= len(rest) {
				return opts, fmt.Errorf("--out requires a value")
			}
			opts.out = rest[i+1]
			i++
		case "--banner":
			if i+1 >= len(rest) {
				return opts, fmt.Errorf("--banner requires a value")
			}
			opts.banner = rest[i+1]
			i++
		case "--classes":
			if i+1 >= len(rest) {
				return opts, fmt.Errorf("--classes requires a value")
			}
			for _, c := range strings.Split(rest[i+1], ",") {
				if c = strings.TrimSpace(c); c != "" {
					opts.classes = append(opts.classes, c)
				}
			}
			i++
		default:
			return opts, fmt.Errorf("unknown option: %s", rest[i])
		}
	}
	return opts, nil
}

// cmdGenerate builds one document from a rate file. Passing "-" as the
// input skips loading and renders blank tables for --classes.
func cmdGenerate(cfg config.Config, args []string) {
	opts, err := parseGenerateArgs(cfg, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		usage()
		os.Exit(1)
	}

	classes := opts.classes
	table := allowance.Table{}
	if opts.input != "-" {
		// An input file always wins over an explicit class list.
		classes, table, err = allowance.LoadFile(opts.input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", opts.input, err)
			os.Exit(1)
		}
		fmt.Printf("Found %d classes in %s: %s\n", len(classes), filepath.Base(opts.input), strings.Join(classes, ", "))
	}

	renderer := document.ForExt(filepath.Ext(opts.out))
	if renderer == nil {
		fmt.Fprintf(os.Stderr, "Unsupported output format: %s\n", filepath.Ext(opts.out))
		os.Exit(1)
	}

	// A missing banner is a warning, not a failure.
	banner, err := document.LoadBanner(opts.banner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: banner image unavailable (%v), continuing without it\n", err)
		banner = nil
	}

	data, err := renderer.Render(document.Spec{
		Title:   document.DefaultTitle,
		Classes: classes,
		Table:   table,
		Banner:  banner,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating document: %v\n", err)
		os.Exit(1)
	}

	if err := writeFileAtomic(opts.out, data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document created: %s (%s, %s)\n", opts.out, renderer.Name(), humanSize(len(data)))
}

// cmdClasses prints the class list detected in a rate file.
func cmdClasses(path string) {
	classes, table, err := allowance.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
		os.Exit(1)
	}
	for _, class := range classes {
		fmt.Printf("%-30s %d age band(s)\n", class, len(table[class]))
	}
}
