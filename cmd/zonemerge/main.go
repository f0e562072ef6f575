package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/benjaminschreck/go-zonemerge/pkg/zonemerge"
	"github.com/benjaminschreck/go-zonemerge/pkg/zonemerge/httpapi"
)

// version is set at build time.
var version = "0.1.0"

const usage = `Usage: zonemerge [-config file] <command> [arguments]

Commands:
  merge   -template <file> -data <file> [-out <file>]   Merge one data file into a template
  batch   -template <file> -out-dir <dir> <data>...     Merge many data files into one template
  inspect -template <file>                              List zones and placeholders
  serve   [-addr <addr>]                                Serve the HTTP API
  version                                               Show version information
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("zonemerge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", zonemerge.DefaultConfigFile, "YAML configuration file")
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return errUsage
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	if command == "version" {
		fmt.Fprintf(stdout, "zonemerge version %s\n", version)
		return nil
	}

	config, err := zonemerge.LoadConfigFile(*configPath)
	if err != nil {
		return err
	}
	zonemerge.SetGlobalConfig(config)
	engine := zonemerge.NewWithConfig(config)
	defer engine.Close()

	switch command {
	case "merge":
		return runMerge(engine, rest, stdout, stderr)
	case "batch":
		return runBatch(ctx, engine, rest, stdout, stderr)
	case "inspect":
		return runInspect(engine, rest, stdout, stderr)
	case "serve":
		return runServe(ctx, engine, rest, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		fs.Usage()
		return errUsage
	}
}

func runMerge(engine *zonemerge.Engine, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatePath := fs.String("template", "", "template file (.txt, .md, .xml)")
	dataPath := fs.String("data", "", "merge data file (.json, .yaml, .yml)")
	outPath := fs.String("out", "", "output file; stdout when empty")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *templatePath == "" || *dataPath == "" {
		fmt.Fprintln(stderr, "merge requires -template and -data")
		return errUsage
	}

	merger := engine.NewMerger(zonemerge.FormatText)
	if err := merger.LoadTemplateFile(*templatePath); err != nil {
		return err
	}
	if err := merger.LoadInputFile(*dataPath); err != nil {
		return err
	}
	out, err := merger.PerformMerge()
	if err != nil {
		return err
	}

	if *outPath == "" {
		_, err := io.WriteString(stdout, out)
		return err
	}
	if err := merger.SaveOutput(*outPath); err != nil {
		return err
	}
	engine.Logger().WithField("path", *outPath).Info("Merged output written")
	return nil
}

func runBatch(ctx context.Context, engine *zonemerge.Engine, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatePath := fs.String("template", "", "template file (.txt, .md, .xml)")
	outDir := fs.String("out-dir", "", "directory for merged files")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *templatePath == "" || *outDir == "" || fs.NArg() == 0 {
		fmt.Fprintln(stderr, "batch requires -template, -out-dir and at least one data file")
		return errUsage
	}

	tmpl, format, err := engine.ParseFile(*templatePath)
	if err != nil {
		return err
	}

	failures := zonemerge.NewMultiError()
	var jobs []zonemerge.Job
	for _, path := range fs.Args() {
		in, err := engine.ReadInputFile(path)
		if err != nil {
			failures.Add(err)
			continue
		}
		jobs = append(jobs, zonemerge.Job{Name: path, Input: in})
	}

	results, err := engine.MergeAll(ctx, tmpl, jobs)
	if err != nil && ctx.Err() != nil {
		return err
	}

	// Output names come from the data file's base name; two inputs that share
	// one must not overwrite each other.
	written := make(map[string]string, len(results))
	for _, res := range results {
		if res.Err != nil {
			failures.Add(res.Err)
			continue
		}
		base := strings.TrimSuffix(filepath.Base(res.Name), filepath.Ext(res.Name))
		outPath := filepath.Join(*outDir, base+format.Extension())
		if prev, ok := written[outPath]; ok {
			failures.Add(zonemerge.NewIOError("write output", outPath,
				fmt.Errorf("%s maps to the same output file as %s", res.Name, prev)))
			continue
		}
		written[outPath] = res.Name
		if err := zonemerge.WriteOutputFile(outPath, res.Output); err != nil {
			failures.Add(err)
			continue
		}
		fmt.Fprintln(stdout, outPath)
	}

	return failures.Err()
}

func runInspect(engine *zonemerge.Engine, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatePath := fs.String("template", "", "template file (.txt, .md, .xml)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *templatePath == "" {
		fmt.Fprintln(stderr, "inspect requires -template")
		return errUsage
	}

	tmpl, format, err := engine.ParseFile(*templatePath)
	if err != nil {
		return err
	}

	report := struct {
		Format       zonemerge.Format     `json:"format"`
		Zones        []zonemerge.ZoneInfo `json:"zones"`
		Placeholders []string             `json:"placeholders"`
	}{
		Format:       format,
		Zones:        tmpl.Zones(),
		Placeholders: tmpl.Placeholders(),
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runServe(ctx context.Context, engine *zonemerge.Engine, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", engine.Config().ListenAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	return httpapi.NewServer(engine).ListenAndServe(ctx, *addr)
}
