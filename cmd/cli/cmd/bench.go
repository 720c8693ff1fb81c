package cmd

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stencil-engine/internal/runstore"
	"github.com/stencil-engine/internal/stencils"
	"github.com/stencil-engine/pkg/telemetry"
	"github.com/stencil-engine/pkg/utils"
	"github.com/stencil-engine/pkg/writer"
)

var (
	benchRepeat int
	benchModes  []string
	benchStore  bool
	benchReport string
)

// BenchResult is one measured mode of a benchmark run.
type BenchResult struct {
	Stencil      string  `json:"stencil"`
	Dims         string  `json:"dims"`
	Timesteps    int     `json:"timesteps"`
	Mode         string  `json:"mode"`
	Workers      int     `json:"workers"`
	BestMS       int64   `json:"best_ms"`
	PointsPerSec float64 `json:"points_per_sec"`
}

// benchCmd represents the bench command.
var benchCmd = &cobra.Command{
	Use:   "bench <stencil> <dim>... <timesteps>",
	Short: "Measure stencil throughput",
	Long: `Run a sample stencil repeatedly in the selected modes and report
the best throughput per mode. Results can be stored in the run
database and written out as a JSON report.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntVar(&benchRepeat, "repeat", 3, "repetitions per mode; the best time wins")
	benchCmd.Flags().StringSliceVar(&benchModes, "modes", []string{runstore.ModeParallel, runstore.ModeSerial, runstore.ModePlan}, "modes to measure")
	benchCmd.Flags().BoolVar(&benchStore, "store", false, "record results in the run database")
	benchCmd.Flags().StringVar(&benchReport, "report", "", "write a JSON report to this file")
}

func benchOnce(c *stencils.Case, mode string, timesteps int) (time.Duration, error) {
	e, err := c.Build(engineConfig())
	if err != nil {
		return 0, err
	}
	c.Reset()

	switch mode {
	case runstore.ModeParallel:
		start := time.Now()
		err = e.Run(timesteps, c.Kernel, c.Boundary)
		return time.Since(start), err
	case runstore.ModeSerial:
		start := time.Now()
		err = e.RunSerial(timesteps, c.Kernel, c.Boundary)
		return time.Since(start), err
	case runstore.ModePlan:
		p, err := e.GenPlan(timesteps)
		if err != nil {
			return 0, err
		}
		c.Reset()
		start := time.Now()
		err = e.RunPlan(p, c.Kernel, c.Boundary)
		return time.Since(start), err
	default:
		return 0, fmt.Errorf("unknown bench mode %q", mode)
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	c, timesteps, err := parseCaseArgs(args)
	if err != nil {
		return err
	}
	if benchRepeat < 1 {
		benchRepeat = 1
	}

	ctx, span := telemetry.Tracer("cli").Start(cmd.Context(), "bench")
	defer span.End()

	var store *runstore.Store
	if benchStore {
		store, err = runstore.Open(&cfg.Database)
		if err != nil {
			return err
		}
	}

	dims := make([]string, len(c.Dims))
	for i, d := range c.Dims {
		dims[i] = fmt.Sprint(d)
	}
	dimLabel := strings.Join(dims, "x")
	points := float64(c.Points()) * float64(timesteps)
	timer := utils.NewTimer(nil)

	var results []BenchResult
	for _, mode := range benchModes {
		best := time.Duration(0)
		for rep := 0; rep < benchRepeat; rep++ {
			timer.StartPhase(fmt.Sprintf("%s#%d", mode, rep))
			d, err := benchOnce(c, mode, timesteps)
			timer.StopPhase(fmt.Sprintf("%s#%d", mode, rep))
			if err != nil {
				return err
			}
			if best == 0 || d < best {
				best = d
			}
		}

		pps := points / best.Seconds()
		logger.Info("%-8s best of %d: %v (%.3g points/sec)", mode, benchRepeat, best, pps)
		results = append(results, BenchResult{
			Stencil:      c.Name,
			Dims:         dimLabel,
			Timesteps:    timesteps,
			Mode:         mode,
			Workers:      runtime.NumCPU(),
			BestMS:       best.Milliseconds(),
			PointsPerSec: pps,
		})

		if store != nil {
			rec := &runstore.RunRecord{
				Stencil:      c.Name,
				Rank:         c.Rank,
				Dims:         dimLabel,
				Timesteps:    timesteps,
				Mode:         mode,
				Workers:      runtime.NumCPU(),
				DurationMS:   best.Milliseconds(),
				PointsPerSec: pps,
			}
			if err := store.Save(ctx, rec); err != nil {
				logger.Warn("failed to store result: %v", err)
			}
		}
	}

	if verbose {
		timer.Report(logger)
	}
	if benchReport != "" {
		w := writer.NewPrettyJSONWriter[[]BenchResult]()
		if err := w.WriteToFile(results, benchReport); err != nil {
			return err
		}
		logger.Info("report written to %s", benchReport)
	}
	return nil
}
