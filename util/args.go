package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the parsed command line configuration for a single
// compilation run. The teacher's Options also carried thread count and
// target arch/vendor/CPU/OS selectors, since that backend could fan work
// out over multiple workers and retarget between aarch64 and riscv. This
// compiler targets exactly one ISA (RV32IMF) and runs single-threaded, so
// those fields have no place here.
type Options struct {
	Src         string // Path to source file; read from stdin if empty.
	Out         string // Path to output file; stdout if empty.
	Verbose     bool   // Print the parsed syntax tree to stderr.
	TokenStream bool   // Print the token stream and exit, without parsing.
}

const appVersion = "rv32cc 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments into an Options value.
func ParseArgs(args []string) (Options, error) {
	opt := Options{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			if strings.HasPrefix(args[i+1], "-") {
				return opt, fmt.Errorf("expected path to output file, got new flag %s", args[i+1])
			}
			opt.Out = args[i+1]
			i++
		case "-ts":
			opt.TokenStream = true
		case "-v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			opt.Verbose = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			opt.Src = args[i]
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help, --help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath to the output assembly file. Defaults to stdout.")
	_, _ = fmt.Fprintln(w, "-ts\tPrint the token stream and exit, without parsing or code generation.")
	_, _ = fmt.Fprintln(w, "-v, -version, --version\tPrints the compiler version and exits.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print the parsed syntax tree to stderr.")
	_ = w.Flush()
}
