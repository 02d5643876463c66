package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/tcxview/internal/config"
	"github.com/briangreenhill/tcxview/internal/upload"
	"github.com/briangreenhill/tcxview/render"
	"github.com/briangreenhill/tcxview/tcx"
)

const version = "tcxview v0.1.0"

func main() {
	if err := runCLI(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer, formats []string) {
	fmt.Fprintln(w, "Usage: tcxview [options] <file.tcx>")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --help, -h          Show this help message")
	fmt.Fprintln(w, "  --version, -v       Show the version")
	fmt.Fprintf(w, "  --format NAME       Output format: %s (default text)\n", strings.Join(formats, ", "))
	fmt.Fprintln(w, "  --json              Same as --format json")
	fmt.Fprintln(w, "  TIMEZONE            Time zone for the start time (default Local)")
	fmt.Fprintln(w, "  LOG_LEVEL           Log level for diagnostics on stderr (default info)")
}

func runCLI(args []string, stdout, stderr io.Writer) error {
	renderers := render.Default()

	if len(args) > 0 {
		switch args[0] {
		case "help", "--help", "-h":
			usage(stdout, renderers.List())
			return nil
		case "version", "--version", "-v":
			fmt.Fprintln(stdout, version)
			return nil
		}
	}

	fs := flag.NewFlagSet("tcxview", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := fs.String("format", "text", "output format")
	asJSON := fs.Bool("json", false, "json output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *asJSON {
		*format = "json"
	}
	if fs.NArg() != 1 {
		usage(stderr, renderers.List())
		return errors.New("exactly one .tcx file is required")
	}

	rd, ok := renderers.Get(*format)
	if !ok {
		return fmt.Errorf("unknown format %q. Available formats: %v", *format, renderers.List())
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	f, err := upload.FromPath(fs.Arg(0))
	if err != nil {
		return err
	}

	// no pacing delay outside the browser
	proc := upload.NewProcessor(
		upload.WithDelay(0),
		upload.WithLogger(logger),
		upload.WithAggregateOptions(tcx.WithLocation(loc)),
	)
	stats, err := proc.Process(context.Background(), f)
	if err != nil {
		logger.Debug().Err(err).Msg("processing failed")
		return errors.New(upload.UserMessage(err))
	}

	out, err := rd.Render(stats)
	if err != nil {
		return fmt.Errorf("render %s: %w", rd.Name(), err)
	}
	_, err = io.WriteString(stdout, out)
	return err
}
