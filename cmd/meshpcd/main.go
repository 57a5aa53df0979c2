// meshpcd converts textured meshes into colored ASCII PLY point clouds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpcd/internal/assets"
	"github.com/Faultbox/meshpcd/internal/config"
	"github.com/Faultbox/meshpcd/internal/export"
	"github.com/Faultbox/meshpcd/internal/logger"
	"github.com/Faultbox/meshpcd/internal/manifest"
	"github.com/Faultbox/meshpcd/internal/prompt"
	"github.com/Faultbox/meshpcd/internal/sampler"
	"github.com/Faultbox/meshpcd/internal/scene"
	"github.com/Faultbox/meshpcd/pkg/ply"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli carries the process streams so commands can be tested.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) < 1 {
		c.printUsage(stderr)
		return 2
	}

	command, rest := args[0], args[1:]
	switch command {
	case "export":
		return c.cmdExport(ctx, rest)
	case "info":
		return c.cmdInfo(rest)
	case "history":
		return c.cmdHistory(ctx, rest)
	case "config":
		return c.cmdConfig(rest)
	case "help", "-h", "--help":
		c.printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		c.printUsage(stderr)
		return 2
	}
}

func (c *cli) printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshpcd - textured mesh to colored PLY point cloud

Usage:
  meshpcd <command> [options]

Commands:
  export [options] <scene.yaml>   Export selected meshes as point clouds
  info <file.ply>                 Show PLY header and vertex count
  history [-n N]                  Show recent exports from the manifest
  config [-save] [-o PATH]        Print the effective config, or save it

Export options:
  -out DIR            Output directory (default ./)
  -density-min N      Minimum points per unit area (default 0)
  -density-max N      Maximum points per unit area (default 100)
  -confirm            Ask before exporting
  -fail-fast          Stop at the first failed mesh
  -library PATH       Asset library (default <binary dir>/assets/generate_point_cloud.yaml)
  -manifest PATH      Record exports in a SQLite database
  -config PATH        Config file
  -debug              Debug logging

Examples:
  meshpcd export -out ./clouds -density-max 250 scene.yaml
  meshpcd info ./clouds/Cube_pcd.ply
  meshpcd history -manifest exports.db -n 5
  meshpcd config -density-max 250 -save`)
}

// loadConfig parses config flags plus any extra flags registered by extra.
func (c *cli) loadConfig(name string, args []string, extra func(*flag.FlagSet)) (*config.Config, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	flags := config.RegisterFlags(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	return cfg, fs, nil
}

func (c *cli) cmdExport(ctx context.Context, args []string) int {
	cfg, fs, err := c.loadConfig("export", args, nil)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Usage: meshpcd export [options] <scene.yaml>")
		return 2
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, c.stderr); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()
	log := logger.Log

	sc, err := scene.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	libraryPath := cfg.Library.Path
	if libraryPath == "" {
		if libraryPath, err = assets.DefaultLibraryPath(); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
	}
	mgr := assets.NewManager()
	defer mgr.Close()

	opts := []export.Option{export.WithLogger(log)}
	if cfg.Manifest.Path != "" {
		db, err := manifest.Open(cfg.Manifest.Path)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		defer db.Close()
		opts = append(opts, export.WithRecorder(db))
	}

	selected := sc.Selected()
	if cfg.Export.Confirm {
		var names []string
		for _, o := range selected {
			if o.Kind == scene.KindMesh {
				names = append(names, o.Name)
			}
		}
		ok, err := prompt.Confirm(c.stdin, c.stdout, prompt.Params{
			OutputDir:  cfg.Export.OutputDir,
			DensityMin: cfg.Export.DensityMin,
			DensityMax: cfg.Export.DensityMax,
			Meshes:     names,
		})
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintln(c.stdout, "Export cancelled.")
			return 1
		}
	}

	exporter := export.NewExporter(sampler.New(sc, mgr, libraryPath, log), opts...)
	report, err := exporter.ExportAll(ctx, selected, export.Options{
		OutputDir:       cfg.Export.OutputDir,
		DensityMin:      cfg.Export.DensityMin,
		DensityMax:      cfg.Export.DensityMax,
		ContinueOnError: cfg.Export.ContinueOnError,
	})
	hits, misses := mgr.Stats()
	log.Debug("asset library cache", zap.Int("hits", hits), zap.Int("misses", misses))

	for _, res := range report.Results {
		if res.OK() {
			fmt.Fprintf(c.stdout, "Exported point cloud to %s.\n", res.Path)
		} else {
			fmt.Fprintf(c.stderr, "Failed to export %s: [%s] %v\n", res.Object, res.Kind, res.Err)
		}
	}

	if errors.Is(err, export.ErrEmptySelection) {
		fmt.Fprintln(c.stderr, "Error: no mesh objects selected.")
		return 1
	}
	fmt.Fprintf(c.stdout, "Exported %d point clouds.\n", report.Exported())

	if failed := len(report.Failed()); failed > 0 || err != nil {
		if err != nil && failed == 0 {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
		}
		log.Warn("export finished with failures",
			zap.Int("failed", failed),
			zap.Int("exported", report.Exported()))
		return 1
	}
	return 0
}

func (c *cli) cmdInfo(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "Usage: meshpcd info <file.ply>")
		return 2
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()

	h, table, err := ply.ReadASCII(f, "vertex")
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(c.stdout, "File:     %s\n", args[0])
	fmt.Fprintf(c.stdout, "Format:   %s %s\n", h.Format, h.Version)
	for _, e := range h.Elements {
		fmt.Fprintf(c.stdout, "Element:  %s (%d)\n", e.Name, e.Count)
		for _, p := range e.Properties {
			fmt.Fprintf(c.stdout, "  %-6s %s\n", p.Type, p.Name)
		}
	}
	fmt.Fprintf(c.stdout, "Vertices: %d\n", len(table.Rows))
	return 0
}

func (c *cli) cmdHistory(ctx context.Context, args []string) int {
	var limit *int
	cfg, _, err := c.loadConfig("history", args, func(fs *flag.FlagSet) {
		limit = fs.Int("n", 20, "Number of entries to show")
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 2
	}
	if cfg.Manifest.Path == "" {
		fmt.Fprintln(c.stderr, "Error: no manifest configured (set manifest.path or -manifest)")
		return 2
	}

	db, err := manifest.Open(cfg.Manifest.Path)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	defer db.Close()

	entries, err := db.Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.stdout, "No exports recorded.")
		return 0
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-20s %-20s %8d pts", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Object, e.Status, e.Points)
		if len(e.Channels) > 0 {
			line += "  [" + strings.Join(e.Channels, ", ") + "]"
		}
		if e.Error != "" {
			line += "  " + e.Error
		}
		fmt.Fprintln(c.stdout, line)
	}
	return 0
}

func (c *cli) cmdConfig(args []string) int {
	var save *bool
	var path *string
	cfg, fs, err := c.loadConfig("config", args, func(fs *flag.FlagSet) {
		save = fs.Bool("save", false, "Write the effective config instead of printing it")
		path = fs.String("o", "", "Save to PATH instead of the user config directory")
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(c.stderr, "Usage: meshpcd config [options] [-save] [-o PATH]")
		return 2
	}

	if !*save {
		if err := cfg.Encode(c.stdout); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	target := *path
	if target == "" {
		target = config.UserConfigPath()
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(target)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: saving config: %v\n", err)
		return 1
	}
	fmt.Fprintf(c.stdout, "Saved config to %s.\n", target)
	return 0
}
