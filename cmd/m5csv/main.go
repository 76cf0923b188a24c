package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/platekit/m5csv"
	"github.com/platekit/m5csv/m5"
)

const version = "0.3.0"

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "m5csv %s\n", version)
	fmt.Fprintln(w, "Convert Softmax M5(e) tab-delimited to flat CSV by well")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  m5csv [flags] <input> [output]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  input           path to M5 tsv file")
	fmt.Fprintln(w, "  [output]        path to output, or stdout if not present")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -strict         validate spacer columns and wavelength counts")
	fmt.Fprintln(w, "  -debug          log decode progress to stderr")
	fmt.Fprintln(w, "  -i              browse the decoded document interactively")
	fmt.Fprintln(w, "  -h, --help      print this help and exit")
}

func main() {
	fs := flag.NewFlagSet("m5csv", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	strict := fs.Bool("strict", false, "validate spacer columns and wavelength counts")
	debug := fs.Bool("debug", false, "log decode progress to stderr")
	interactive := fs.Bool("i", false, "browse the decoded document interactively")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			printUsage(os.Stdout)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if *debug {
		logger, err := zap.NewDevelopment()
		if err == nil {
			defer logger.Sync()
			m5.SetLogger(logger)
		}
	}

	input := fs.Arg(0)
	if input == "" {
		fmt.Fprintln(os.Stderr, "Missing input M5 tab-delimited file")
		fmt.Fprintln(os.Stderr, "Pass --help for more info")
		return
	}

	opts := m5.Options{Strict: *strict}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(input, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(input, fs.Arg(1), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string, opts m5.Options) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	if outputPath == "" {
		return m5csv.ConvertWith(in, os.Stdout, opts)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := m5csv.ConvertWith(in, out, opts); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
