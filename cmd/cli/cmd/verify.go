package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stencil-engine/internal/stencils"
	"github.com/stencil-engine/pkg/parallel"
)

var (
	verifyTimesteps int
	verifySize      int
)

// verifyCmd cross-checks every registered stencil against its naive
// reference loop, in both scheduler modes.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify every sample stencil against the naive loop",
	Long: `Run every registered sample stencil with the parallel and the
strictly-serial scheduler and compare each result against the naive
nested reference loop. Cases are independent and verified concurrently.`,
	RunE: runVerifyAll,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().IntVar(&verifyTimesteps, "timesteps", 8, "time steps per case")
	verifyCmd.Flags().IntVar(&verifySize, "size", 32, "grid extent per dimension")
}

type verifyOutcome struct {
	name string
	err  error
}

func verifyCase(name string, timesteps, size int) error {
	factory, err := stencils.Lookup(name)
	if err != nil {
		return err
	}

	for _, serial := range []bool{false, true} {
		c, err := factory(squareDims(name, size))
		if err != nil {
			return err
		}
		e, err := c.Build(engineConfig())
		if err != nil {
			return err
		}
		c.Reset()
		if serial {
			err = e.RunSerial(timesteps, c.Kernel, c.Boundary)
		} else {
			err = e.Run(timesteps, c.Kernel, c.Boundary)
		}
		if err != nil {
			return err
		}
		c.Naive(timesteps)
		if !c.Equal(timesteps) {
			mode := "parallel"
			if serial {
				mode = "serial"
			}
			return fmt.Errorf("%s: %s scheduler disagrees with the naive loop", name, mode)
		}
	}
	return nil
}

// squareDims picks per-case extents: 1D cases get one dimension, 2D
// cases a square grid.
func squareDims(name string, size int) []int {
	switch name {
	case "shift", "diffusion":
		return []int{size}
	default:
		return []int{size, size}
	}
}

func runVerifyAll(cmd *cobra.Command, args []string) error {
	names := stencils.Names()
	outcomes, err := parallel.Map(context.Background(), parallel.DefaultPoolConfig(), names,
		func(_ context.Context, name string) verifyOutcome {
			return verifyOutcome{name: name, err: verifyCase(name, verifyTimesteps, verifySize)}
		})
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			logger.Error("FAIL %s: %v", o.name, o.err)
		} else {
			logger.Info("PASS %s", o.name)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d stencils failed verification", failed, len(outcomes))
	}
	logger.Info("all %d stencils verified", len(outcomes))
	return nil
}
