// Command wsp generates or loads a candidate point cloud and reduces it to a
// space-filling subset using the WSP algorithm, writing the retained points
// to CSV.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spacefill/wsp"
)

type options struct {
	points     int
	dims       int
	distance   float64
	adaptive   int
	seed       uint64
	output     string
	input      string
	initial    string
	metric     string
	minkowskiP float64
	algorithm  string
	workers    int
	header     bool
	verbose    bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "wsp",
	Short: "Space-filling design subsetting with the WSP algorithm",
	Long: `wsp reduces a point cloud to a maximally spaced subset: every pair of
retained points ends up at least a minimal distance apart.

By default the cloud is generated uniformly at random with a fixed seed;
--input loads it from CSV instead. With -d the minimal distance is fixed;
with --adaptive N the distance is binary-searched so that about N points
survive. Retained points are written as CSV rows in their original order.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(opts, cmd.Flags().Changed("adaptive"))
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVarP(&opts.points, "points", "n", 2000, "number of candidate points to generate")
	f.IntVarP(&opts.dims, "dims", "m", 20, "dimensionality of generated points")
	f.Float64VarP(&opts.distance, "distance", "d", 1.0, "minimal distance between retained points")
	f.IntVar(&opts.adaptive, "adaptive", 0, "search the distance yielding this many retained points")
	f.Uint64VarP(&opts.seed, "seed", "s", 51, "seed for point generation")
	f.StringVarP(&opts.output, "output", "o", "wsp.csv", "output file for the retained points")
	f.StringVar(&opts.input, "input", "", "load the candidate cloud from this CSV file instead of generating")
	f.StringVar(&opts.initial, "initial", "", "also save the full candidate cloud to this CSV file")
	f.StringVar(&opts.metric, "metric", "manhattan", "distance metric: manhattan, euclidean, chebyshev or minkowski")
	f.Float64Var(&opts.minkowskiP, "minkowski-p", 2, "exponent for the minkowski metric (>= 1)")
	f.StringVar(&opts.algorithm, "algorithm", "auto", "elimination strategy: auto, brute or kdtree")
	f.IntVar(&opts.workers, "workers", 0, "goroutines for parallel stages (0 = all CPUs)")
	f.BoolVar(&opts.header, "header", false, "write a header row to output CSVs")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log adaptive-search iterations")
}

func run(opts options, adaptive bool) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	metric, err := parseMetric(opts.metric, opts.minkowskiP)
	if err != nil {
		return err
	}

	ps, err := loadPoints(opts)
	if err != nil {
		return err
	}
	logger.Info("candidate cloud ready", "points", ps.Len(), "dims", ps.Dims())

	if opts.initial != "" {
		if err := wsp.WriteCSVFile(opts.initial, ps, opts.header); err != nil {
			return err
		}
	}

	cfg := wsp.DefaultConfig()
	cfg.Metric = metric
	cfg.Algorithm = wsp.Algorithm(opts.algorithm)
	cfg.Workers = opts.workers

	if adaptive {
		if opts.adaptive < 1 || opts.adaptive > ps.Len() {
			return fmt.Errorf("adaptive target %d outside [1, %d]", opts.adaptive, ps.Len())
		}
		if opts.verbose {
			cfg.OnIteration = func(it wsp.Iteration) {
				logger.Info("trial", "iter", it.Index, "distance", it.DMin, "retained", it.Count)
			}
		}
		result, err := wsp.AdaptiveSearch(ps, opts.adaptive, cfg)
		if err != nil {
			return err
		}
		logger.Info("adaptive search done",
			"distance", result.BestDMin,
			"retained", result.RetainedCount,
			"exact", result.Exact,
			"iterations", len(result.Iterations))
	} else {
		if err := wsp.Select(ps, opts.distance, cfg); err != nil {
			return err
		}
		logger.Info("selection done", "distance", opts.distance, "retained", ps.ActiveCount())
	}

	if err := wsp.WriteCSVFile(opts.output, ps, opts.header); err != nil {
		return err
	}
	logger.Info("wrote retained points", "path", opts.output)
	return nil
}

func loadPoints(opts options) (*wsp.PointSet, error) {
	if opts.input != "" {
		f, err := os.Open(opts.input)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", opts.input, err)
		}
		defer f.Close()
		points, err := wsp.ReadCSV(f)
		if err != nil {
			return nil, err
		}
		return wsp.New(points)
	}
	return wsp.NewRandom(opts.points, opts.dims, opts.seed)
}

func parseMetric(name string, minkowskiP float64) (wsp.DistanceMetric, error) {
	switch name {
	case "manhattan":
		return wsp.ManhattanMetric{}, nil
	case "euclidean":
		return wsp.EuclideanMetric{}, nil
	case "chebyshev":
		return wsp.ChebyshevMetric{}, nil
	case "minkowski":
		if minkowskiP < 1 {
			return nil, fmt.Errorf("minkowski exponent must be >= 1, got %g", minkowskiP)
		}
		return wsp.MinkowskiMetric{P: minkowskiP}, nil
	default:
		return nil, fmt.Errorf("unknown metric %q (want manhattan, euclidean, chebyshev or minkowski)", name)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
