package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/coachme/dsview/internal/archive"
	"github.com/coachme/dsview/internal/dataset"
	"github.com/coachme/dsview/internal/export"
)

// load reads the configured input. A missing or unreadable archive is
// reported on stdout and yields nil; it is not a failure of the run.
func (a *app) load(ctx context.Context) *dataset.Dataset {
	path := a.inspect.InputPath
	if !archive.Exists(path) {
		a.reporter.Missing(path)
		return nil
	}

	ds, err := a.loader.Load(ctx, path)
	if err != nil {
		var le *archive.LoadError
		if errors.As(err, &le) {
			err = le.Err
		}
		a.logger.WarnContext(ctx, "Failed to load archive", "error", err)
		a.reporter.LoadFailed(err)
		return nil
	}
	return ds
}

func (a *app) runInspect(ctx context.Context) int {
	code := exitOK
	path := a.inspect.InputPath

	if archive.Exists(path) {
		a.reporter.Header(path)
	}
	if ds := a.load(ctx); ds != nil {
		if err := a.reporter.Inspect(ds, a.inspect.ShowDetails, a.inspect.PreviewCount); err != nil {
			return exitFailed
		}
		if a.exportCfg.Path != "" {
			code = a.writeMirror(ctx, ds, a.exportCfg.Path)
		}
	}

	a.reporter.OtherArchives(archive.Siblings(path))
	return code
}

func (a *app) runExport(ctx context.Context, args []string) int {
	out := a.exportCfg.Path
	if len(args) > 0 {
		out = args[0]
	}
	if out == "" {
		fmt.Fprintln(a.stderr, "export: missing output path")
		return exitUsage
	}

	ds := a.load(ctx)
	if ds == nil {
		return exitOK
	}
	return a.writeMirror(ctx, ds, out)
}

func (a *app) runConvert(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "convert: missing output path")
		return exitUsage
	}
	out := args[0]

	ds := a.load(ctx)
	if ds == nil {
		return exitOK
	}
	if err := a.loader.Write(ctx, ds, out); err != nil {
		a.logger.ErrorContext(ctx, "Failed to convert archive", "error", err, "output", out)
		return exitFailed
	}
	a.logger.InfoContext(ctx, "Converted archive", "output", out, "records", ds.Len())
	a.reporter.Exported(out)
	return exitOK
}

func (a *app) writeMirror(ctx context.Context, ds *dataset.Dataset, out string) int {
	cfg := export.Config{
		Compress:    a.exportCfg.Compress,
		Progress:    a.exportCfg.Progress,
		ProgressOut: a.stderr,
	}
	if err := export.Write(ds, out, cfg); err != nil {
		a.logger.ErrorContext(ctx, "Failed to export JSON mirror", "error", err, "output", out)
		return exitFailed
	}
	a.logger.InfoContext(ctx, "Exported JSON mirror", "output", out, "records", ds.Len())
	a.reporter.Exported(out)
	return exitOK
}
