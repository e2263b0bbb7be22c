package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/mcncl/jsonsheet/internal/analyzer"
	"github.com/mcncl/jsonsheet/internal/config"
	"github.com/mcncl/jsonsheet/internal/converter"
	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/mcncl/jsonsheet/internal/logging"
	"github.com/mcncl/jsonsheet/internal/models"
	"github.com/mcncl/jsonsheet/internal/parser"
	"github.com/mcncl/jsonsheet/internal/sheet"
	"github.com/mcncl/jsonsheet/internal/web"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config  string           `help:"Path to a config file. Defaults to .jsonsheet.yml searched upward from the working directory." type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Convert    ConvertCmd    `cmd:"" default:"withargs" help:"Convert a JSON export to a spreadsheet (default)."`
	Serve      ServeCmd      `cmd:"" help:"Run the upload web server."`
	Inspect    InspectCmd    `cmd:"" help:"Show the columns a conversion produces, with inferred kinds and fill counts."`
	Converters ConvertersCmd `cmd:"" help:"List the available converters."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Debug  bool
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ConvertCmd converts one JSON document.
type ConvertCmd struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Converter   string `help:"Converter to use (globosat_composite, globosat_planning, fuboln, generic)." short:"c"`
	Format      string `help:"Output format: xlsx or csv. Inferred from --output when omitted." short:"f"`
	Sheet       string `help:"Worksheet name for xlsx output."`
	Headers     string `help:"Header style: original, snake, camel, lower_camel or kebab."`
	Interactive bool   `help:"Paste JSON directly and press Ctrl+D to process." short:"I"`
}

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Host string `help:"Interface to listen on."`
	Port int    `help:"Port to listen on." short:"p"`
}

// InspectCmd profiles a conversion without writing a spreadsheet.
type InspectCmd struct {
	Input     string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Converter string `help:"Converter to use." short:"c"`
	JSON      bool   `help:"Print the profile as JSON."`
}

// ConvertersCmd lists converters.
type ConvertersCmd struct {
	JSON bool `help:"Print the list as JSON."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("jsonsheet"),
		kong.Description("Convert JSON schedule exports to spreadsheets"),
		kong.UsageOnError(),
		kong.Vars{"version": "jsonsheet version " + Version},
	)

	ctx := &Context{
		Debug:  cli.Debug,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	err := kctx.Run(ctx, &cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonsheet --help\n")
		os.Exit(1)
	}
}

// loadConfig resolves the config file and applies environment and flag overrides.
func loadConfig(cli *CLI, overrides config.CLIOverrides) (*config.Config, error) {
	path := cli.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	overrides.Debug = cli.Debug

	cfg, err := config.LoadConfigWithCLI(path, os.Getenv, overrides)
	if err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

// configError keeps typed errors from the converter registry and wraps the rest.
func configError(err error) error {
	if errors.IsType(err, errors.ErrorTypeConfig) {
		return err
	}
	return errors.NewConfigError(err.Error(), nil)
}

// Run implements the convert command.
func (c *ConvertCmd) Run(ctx *Context, cli *CLI) error {
	format := c.Format
	if format == "" {
		format = formatFromPath(c.Output)
	}

	cfg, err := loadConfig(cli, config.CLIOverrides{
		Converter: c.Converter,
		Format:    format,
		SheetName: c.Sheet,
		Headers:   c.Headers,
	})
	if err != nil {
		return err
	}
	ctx.Config = cfg
	logging.Setup(ctx.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	return run(ctx, c)
}

// run executes the conversion pipeline
func run(ctx *Context, cmd *ConvertCmd) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	// 1. Resolve the converter and the output writer before reading input
	kind, err := converter.ParseKind(cfg.Converter)
	if err != nil {
		return err
	}
	writer, err := sheet.NewWriter(sheet.Format(cfg.Output.Format), cfg.WriterOptions())
	if err != nil {
		return err
	}

	// 2. Parse JSON input
	doc, err := parseInput(ctx, cmd.Input, cmd.Interactive)
	if err != nil {
		return err
	}

	// 3. Convert
	table, err := converter.Convert(kind, doc)
	if err != nil {
		return err
	}

	// 4. Serialize
	var buf bytes.Buffer
	if err := writer.Write(&buf, table); err != nil {
		return errors.NewOutputError("failed to write spreadsheet", err)
	}

	slog.Debug("conversion finished",
		"converter", kind.String(),
		"rows", table.Len(),
		"columns", len(table.Columns),
	)

	// 5. Output the result
	return writeOutput(ctx, cmd.Output, buf.Bytes())
}

// formatFromPath infers the output format from a file extension.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return string(sheet.FormatCSV)
	case ".xlsx":
		return string(sheet.FormatXLSX)
	}
	return ""
}

// parseInput reads JSON from file or stdin
func parseInput(ctx *Context, input string, interactive bool) (models.JSONValue, error) {
	if input != "" {
		return parser.ParseFile(input)
	}

	stdin := ctx.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	// A terminal on stdin means nothing was piped in
	if f, ok := stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			if interactive {
				return readInteractiveInput(ctx, f)
			}
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	jsonData, err := io.ReadAll(stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(jsonData) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseBytes(jsonData)
}

// readInteractiveInput lets users paste JSON and signal completion with Ctrl+D (EOF)
func readInteractiveInput(ctx *Context, in io.Reader) (models.JSONValue, error) {
	fmt.Fprintln(ctx.Stderr, "jsonsheet interactive mode")
	fmt.Fprintln(ctx.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(in)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(jsonBuilder.String()) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(ctx.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonBuilder.String())
}

// writeOutput writes the spreadsheet to a file or stdout
func writeOutput(ctx *Context, path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(ctx.Stderr, "Spreadsheet written to %s\n", path)
		return nil
	}

	stdout := ctx.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if _, err := stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// Run implements the inspect command.
func (c *InspectCmd) Run(ctx *Context, cli *CLI) error {
	cfg, err := loadConfig(cli, config.CLIOverrides{Converter: c.Converter})
	if err != nil {
		return err
	}
	ctx.Config = cfg
	logging.Setup(ctx.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	return inspect(ctx, c)
}

// inspect converts the input and prints a profile of the resulting columns
func inspect(ctx *Context, cmd *InspectCmd) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	kind, err := converter.ParseKind(cfg.Converter)
	if err != nil {
		return err
	}
	doc, err := parseInput(ctx, cmd.Input, false)
	if err != nil {
		return err
	}
	table, err := converter.Convert(kind, doc)
	if err != nil {
		return err
	}

	profile := analyzer.Analyze(kind.String(), table)
	if cmd.JSON {
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(profile); err != nil {
			return errors.NewOutputError("failed to write profile", err)
		}
		return nil
	}

	fmt.Fprintf(ctx.Stdout, "converter: %s\nrows: %d\ncolumns: %d\n\n", profile.Converter, profile.Rows, len(profile.Columns))
	tw := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tKIND\tFILLED\tEMPTY\tSAMPLE")
	for _, c := range profile.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", c.Name, c.Kind, c.Filled, c.Empty, truncate(c.Sample, 40))
	}
	if err := tw.Flush(); err != nil {
		return errors.NewOutputError("failed to write profile", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Run implements the converters command.
func (c *ConvertersCmd) Run(ctx *Context) error {
	kinds := converter.Kinds()

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(kinds); err != nil {
			return errors.NewOutputError("failed to write converter list", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	for _, info := range kinds {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Label, info.Description)
	}
	if err := tw.Flush(); err != nil {
		return errors.NewOutputError("failed to write converter list", err)
	}
	return nil
}

// Run implements the serve command.
func (s *ServeCmd) Run(ctx *Context, cli *CLI) error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := loadConfig(cli, config.CLIOverrides{})
	if err != nil {
		return err
	}
	if s.Host != "" {
		cfg.Server.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Server.Port = s.Port
	}
	if err := cfg.Validate(); err != nil {
		return configError(err)
	}
	ctx.Config = cfg

	logging.Setup(ctx.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"default_converter", cfg.Converter,
		"max_upload_bytes", cfg.Server.MaxUploadBytes,
	)

	server := web.NewServer(cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.NewOutputError("server stopped", err)
	}
	<-done
	slog.Info("server stopped")
	return nil
}
