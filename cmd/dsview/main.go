// Command dsview inspects motion-capture dataset archives: it prints the
// schema of the first record, dataset statistics and sample previews, and
// can export a JSON mirror or convert between archive formats.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/coachme/dsview/internal/archive"
	"github.com/coachme/dsview/internal/config"
	"github.com/coachme/dsview/internal/database"
	"github.com/coachme/dsview/internal/logging"
	"github.com/coachme/dsview/internal/otel"
	"github.com/coachme/dsview/internal/report"
)

const appName = "dsview"

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

const usage = `Usage: dsview [flags] [command] [args]

Commands:
  inspect          print the dataset report (default)
  export <out>     write the JSON mirror to <out>
  convert <out>    rewrite the archive as .json, .json.gz, .yaml or .db

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app holds what every command needs.
type app struct {
	logger   *slog.Logger
	loader   *archive.Loader
	reporter *report.Reporter
	stderr   io.Writer

	inspect   config.InspectConfig
	exportCfg config.ExportConfig
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := config.BindFlags(fs); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	configDirs := []string{"."}
	if dir, _ := fs.GetString("config-dir"); dir != "" {
		configDirs = []string{dir}
	}
	configErr := config.Load(configDirs...)

	slogManager, provider, closeLogs := setupLogging()
	defer closeLogs()

	logger := slogManager.Logger()
	if configErr != nil {
		logger.Warn("Failed to load config, using defaults!", "error", configErr)
	}

	a := &app{
		logger:    logger,
		stderr:    stderr,
		inspect:   config.GetInspectConfig(),
		exportCfg: config.GetExportConfig(),
	}
	a.reporter = report.New(stdout, report.WithColor(report.ColorEnabled(a.inspect.Color, stdout)))

	db := config.GetDatabaseConfig()
	a.loader = archive.NewLoader(
		archive.WithLogger(logger),
		archive.WithMeter(provider.Meter(appName)),
		archive.WithPostgresDSN(database.PostgresDSN(db.Host, db.Port, db.Username, db.Password, db.Database)),
	)

	command := "inspect"
	rest := fs.Args()
	if len(rest) > 0 {
		command = strings.ToLower(rest[0])
		rest = rest[1:]
	}

	ctx := logging.WithAttrs(context.Background(),
		slog.String("command", command),
		slog.String("archive", a.inspect.InputPath),
	)

	code := exitOK
	switch command {
	case "inspect":
		code = a.runInspect(ctx)
	case "export":
		code = a.runExport(ctx, rest)
	case "convert":
		code = a.runConvert(ctx, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		fs.Usage()
		return exitUsage
	}

	if err := a.reporter.Err(); err != nil {
		logger.ErrorContext(ctx, "Failed to write report", "error", err)
		code = exitFailed
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(flushCtx); err != nil {
		logger.Warn("Failed to shut down OTel provider", "error", err)
	}
	return code
}

// setupLogging configures slog from the loaded config. Logs go to a session
// file when logsDir is set, otherwise to stderr.
func setupLogging() (*logging.SlogManager, *otel.Provider, func()) {
	slogManager := logging.NewSlogManager(appName)
	level := config.GetString("logLevel")

	var logFile *os.File
	var logWriter io.Writer
	if dir := config.GetString("logsDir"); dir != "" {
		f, err := logging.OpenLogFile(dir, appName, time.Now())
		if err != nil {
			slogManager.Setup(nil, level, nil)
			slogManager.Logger().Error("Failed to create/open log file!", "error", err, "dir", dir)
		} else {
			logFile = f
			logWriter = f
		}
	}

	otelCfg := config.GetOTelConfig()
	otelWriter := logWriter
	if otelWriter == nil {
		otelWriter = os.Stderr
	}
	provider, err := otel.New(otel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    otelWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		slogManager.Setup(logWriter, level, nil)
		slogManager.Logger().Error("Failed to initialize OTel provider", "error", err)
		provider, _ = otel.New(otel.Config{})
	} else {
		slogManager.Setup(logWriter, level, provider.LoggerProvider())
	}

	return slogManager, provider, func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}
}
