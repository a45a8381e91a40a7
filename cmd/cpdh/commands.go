package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cpdh-retrieval/internal/config"
	"cpdh-retrieval/internal/cpdh"
	"cpdh-retrieval/internal/dataset"
	"cpdh-retrieval/internal/version"
)

const defaultPoints = 100

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func solverFor(cfg *config.Config) cpdh.TransportDistance {
	if cfg.Solver == config.SolverLP {
		return cpdh.LPSolver{}
	}
	return cpdh.FlowSolver{}
}

func matchOptions(cfg *config.Config) []dataset.Option {
	return []dataset.Option{
		dataset.WithWorkers(cfg.Workers),
		dataset.WithSolver(solverFor(cfg)),
		dataset.WithNearDuplicateEpsilon(cfg.NearDuplicateEpsilon),
	}
}

func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid point count %q", f)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no point counts in %q", s)
	}
	return counts, nil
}

func imageDir(flagDir string, cfg *config.Config) (string, error) {
	dir := flagDir
	if dir == "" {
		dir = cfg.DatasetDir
	}
	if dir == "" {
		return "", fmt.Errorf("no image directory: pass -dir or set dataset_dir in the config")
	}
	return dir, nil
}

// describeFile traces an image and builds its descriptor.
func describeFile(tracer dataset.Tracer, path string, n int) (*cpdh.Descriptor, error) {
	contour, err := tracer.Trace(path)
	if err != nil {
		return nil, err
	}
	d, err := cpdh.Build(filepath.Base(path), contour, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func runDescribe(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("describe", out)
	configPath := fs.String("config", "", "Path to config file")
	n := fs.Int("n", defaultPoints, "Number of sample points")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(out, "Usage: cpdh describe [-n 100] <image>...")
		return errUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	tracer, err := newTracer(cfg)
	if err != nil {
		return err
	}

	for _, path := range fs.Args() {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := describeFile(tracer, path, *n)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n\n", d)
	}
	return nil
}

func runBuild(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("build", out)
	configPath := fs.String("config", "", "Path to config file")
	dirFlag := fs.String("dir", "", "Directory of category images (default: dataset_dir from config)")
	countsFlag := fs.String("counts", "", "Comma separated point counts (default: point_counts from config)")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	dir, err := imageDir(*dirFlag, cfg)
	if err != nil {
		return err
	}
	counts := cfg.PointCounts
	if *countsFlag != "" {
		if counts, err = parseCounts(*countsFlag); err != nil {
			return err
		}
	}
	tracer, err := newTracer(cfg)
	if err != nil {
		return err
	}

	files, err := dataset.ListImages(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images in %s", dir)
	}

	fmt.Fprintf(out, "Building data sets for %d images at %v points\n", len(files), counts)
	opts := append(matchOptions(cfg), dataset.WithProgress(func(done, total int) {
		if done%50 == 0 || done == total {
			fmt.Fprintf(out, "  %d/%d images\n", done, total)
		}
	}))
	sets, skipped, err := dataset.Construct(ctx, tracer, files, counts, opts...)
	if err != nil {
		return err
	}

	if err := dataset.SaveAll(dir, sets); err != nil {
		return err
	}
	for _, n := range counts {
		ds := sets[n]
		fmt.Fprintf(out, "Saved %s: %d categories, %d shapes\n",
			filepath.Base(dataset.FileName(dir, n)), ds.NumCategories(), ds.NumDescriptors())
	}
	if len(skipped) > 0 {
		fmt.Fprintf(out, "\nSkipped %d files:\n", len(skipped))
		for _, fe := range skipped {
			fmt.Fprintf(out, "  %v\n", fe)
		}
	}
	return nil
}

func runMatch(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("match", out)
	configPath := fs.String("config", "", "Path to config file")
	dirFlag := fs.String("dir", "", "Directory holding the data set (default: dataset_dir from config)")
	n := fs.Int("n", defaultPoints, "Number of sample points")
	top := fs.Int("top", 1, "Number of ranked categories to print")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(out, "Usage: cpdh match [-dir <images>] [-n 100] [-top 5] <image>...")
		return errUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	dir, err := imageDir(*dirFlag, cfg)
	if err != nil {
		return err
	}
	ds, err := dataset.LoadFile(dataset.FileName(dir, *n), *n)
	if err != nil {
		return err
	}
	tracer, err := newTracer(cfg)
	if err != nil {
		return err
	}

	opts := matchOptions(cfg)
	for _, path := range fs.Args() {
		d, err := describeFile(tracer, path, *n)
		if err != nil {
			return err
		}
		scores, err := ds.Rank(ctx, d, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if *top > 0 && len(scores) > *top {
			scores = scores[:*top]
		}
		fmt.Fprintf(out, "%s:\n", path)
		for i, s := range scores {
			fmt.Fprintf(out, "  %d. %v\n", i+1, s)
		}
	}
	return nil
}

func runEvaluate(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("evaluate", out)
	configPath := fs.String("config", "", "Path to config file")
	dirFlag := fs.String("dir", "", "Directory holding the data sets (default: dataset_dir from config)")
	n := fs.Int("n", 0, "Number of sample points (default: every configured point count)")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	dir, err := imageDir(*dirFlag, cfg)
	if err != nil {
		return err
	}
	counts := cfg.PointCounts
	if *n > 0 {
		counts = []int{*n}
	}
	sets, err := dataset.LoadAll(dir, counts)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return fmt.Errorf("no data sets for %v points in %s", counts, dir)
	}

	for _, c := range counts {
		ds, ok := sets[c]
		if !ok {
			continue
		}
		if err := evaluateSet(ctx, out, c, ds, cfg); err != nil {
			return err
		}
	}
	return nil
}

func evaluateSet(ctx context.Context, out io.Writer, n int, ds *dataset.Dataset, cfg *config.Config) error {
	fmt.Fprintf(out, "Evaluating %d shapes in %d categories at %d points\n", ds.NumDescriptors(), ds.NumCategories(), n)
	ev, err := dataset.Evaluate(ctx, ds, matchOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("%d point data set: %w", n, err)
	}

	fmt.Fprintf(out, "\n%-20s %8s %8s\n", "Category", "Correct", "Total")
	for _, g := range ev.Groups {
		fmt.Fprintf(out, "%-20s %8d %8d\n", g.Group, g.Correct, g.Total)
	}
	if len(ev.Misses) > 0 {
		sort.Slice(ev.Misses, func(i, j int) bool { return ev.Misses[i].ID < ev.Misses[j].ID })
		fmt.Fprintf(out, "\nMisses:\n")
		for _, m := range ev.Misses {
			fmt.Fprintf(out, "  %s (%s) -> %v\n", m.ID, m.Expected, m.Got)
		}
	}
	fmt.Fprintf(out, "\nAccuracy: %d/%d (%.1f%%)\n\n", ev.Correct, ev.Total, 100*ev.Accuracy())
	return nil
}

// runConfig handles "config init", which writes the defaults, and
// "config show", which prints the configuration in effect.
func runConfig(args []string, out io.Writer) error {
	if len(args) == 0 || (args[0] != "init" && args[0] != "show") {
		fmt.Fprintln(out, "Usage: cpdh config init|show [-config <path>] [-dir <images>] [-force]")
		return errUsage
	}
	action := args[0]

	fs := newFlagSet("config "+action, out)
	configPath := fs.String("config", "", "Path to config file")
	dirFlag := fs.String("dir", "", "Image directory to record as dataset_dir (init only)")
	force := fs.Bool("force", false, "Overwrite an existing config file (init only)")
	if help, err := parse(fs, args[1:]); help || err != nil {
		return err
	}

	path := *configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	if action == "show" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n%s\n", path, data)
		return nil
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use -force to overwrite", path)
	}
	cfg := config.Default()
	cfg.DatasetDir = *dirFlag
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func runVersion(out io.Writer) error {
	fmt.Fprintln(out, version.String())
	return nil
}
