// Allowance is a CLI tool and HTTP server that converts CSV/Excel
// allowance rate tables into formatted, navigable PDF or Excel
// documents.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/reecedigiacomo/allowance/document"
	"github.com/reecedigiacomo/allowance/internal/config"
)

// version is the application version, embedded in API responses and used
// for static asset cache-busting.
const version = "1.0.0"

// usage prints command-line help to stderr.
func usage() {
	fmt.Fprintf(os.Stderr, `allowance v%s
Allowance document generator

Usage:
  allowance generate <input> [options]   Generate a document from a rate file
  allowance classes  <input>             Print the classes found in a rate file
  allowance serve    [port] [options]    Start web interface (default port 8080)
  allowance help                         Show this help message

Generate options:
  --out <path>        Output file; extension picks the format
                      (default ICHRA_Allowance_Model.pdf)
  --banner <ref>      Banner image path or http(s) URL
  --classes <a,b,c>   Explicit class list, used only when <input> is "-"
                      (tables render blank without input data)

Serve options:
  --base-path <path>  Serve under a URL prefix (e.g. /allowance)

Examples:
  allowance generate allowances.csv
  allowance generate allowances.csv --out model.xlsx --banner header.png
  allowance generate - --classes CA,MA,CO --out template.pdf
  allowance classes allowances.csv
  allowance serve 9090
`, version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()
	if err := document.ApplyLicense(cfg.UnidocLicenseKey); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying unipdf license: %v\n", err)
		os.Exit(1)
	}

	cmd := strings.ToLower(os.Args[1])
	args := os.Args[2:]

	switch cmd {
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		fmt.Println(version)
	case "healthcheck":
		cmdHealthcheck(args)
	case "generate", "gen":
		requireInput(args)
		cmdGenerate(cfg, args)
	case "classes":
		requireInput(args)
		cmdClasses(args[0])
	case "serve", "server", "web":
		port := cfg.Port
		basePath := ""
		for i := 0; i < len(args); i++ {
			if args[i] == "--base-path" && i+1 < len(args) {
				basePath = args[i+1]
				i++
			} else {
				port = args[i]
			}
		}
		cmdServe(cfg, port, basePath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

// requireInput exits with an error if no input argument was provided.
func requireInput(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: input file required")
		usage()
		os.Exit(1)
	}
}
