package cmd

import (
	"compress/gzip"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stencil-engine/internal/plan"
	"github.com/stencil-engine/internal/storage"
	"github.com/stencil-engine/pkg/telemetry"
	"github.com/stencil-engine/pkg/writer"
)

var (
	planUpload   bool
	planDownload bool
	planKey      string
)

// planCmd groups the plan subcommands.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Record and replay execution plans",
	Long: `A plan records the scheduler's decomposition of a run into base
cases and barriers. Replaying a plan executes the same base cases
without re-deciding, and a published plan can be replayed on another
machine with the same grid configuration.`,
}

// planGenCmd generates and stores a plan.
var planGenCmd = &cobra.Command{
	Use:   "gen <stencil> <dim>... <timesteps>",
	Short: "Generate a plan with a dry run",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runPlanGen,
}

// planRunCmd replays a stored plan.
var planRunCmd = &cobra.Command{
	Use:   "run <stencil> <dim>... <timesteps>",
	Short: "Replay a previously generated plan",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runPlanRun,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planGenCmd)
	planCmd.AddCommand(planRunCmd)

	planGenCmd.Flags().BoolVar(&planUpload, "upload", false, "publish the plan files to the configured storage")
	planRunCmd.Flags().BoolVar(&planDownload, "download", false, "fetch the plan files from the configured storage first")
	planCmd.PersistentFlags().StringVar(&planKey, "key", "", "storage key prefix (default: the stencil name)")
}

func planFiles() (string, string) {
	return filepath.Join(cfg.Plan.Dir, cfg.Plan.BaseDataFile),
		filepath.Join(cfg.Plan.Dir, cfg.Plan.SyncDataFile)
}

func storageKeys(stencil string) (string, string) {
	prefix := planKey
	if prefix == "" {
		prefix = stencil
	}
	return prefix + "/" + cfg.Plan.BaseDataFile + ".gz",
		prefix + "/" + cfg.Plan.SyncDataFile + ".gz"
}

func runPlanGen(cmd *cobra.Command, args []string) error {
	c, timesteps, err := parseCaseArgs(args)
	if err != nil {
		return err
	}
	e, err := c.Build(engineConfig())
	if err != nil {
		return err
	}

	ctx, span := telemetry.Tracer("cli").Start(cmd.Context(), "plan.gen")
	defer span.End()

	start := time.Now()
	p, err := e.GenPlan(timesteps)
	if err != nil {
		return err
	}
	baseFile, syncFile := planFiles()
	if err := plan.Save(p, baseFile, syncFile); err != nil {
		return err
	}
	logger.Info("plan generated in %v: %d base cases, %d sync points -> %s, %s",
		time.Since(start), len(p.Base), len(p.Sync), baseFile, syncFile)

	if !planUpload {
		return nil
	}
	store, err := storage.New(&cfg.Storage)
	if err != nil {
		return err
	}
	baseKey, syncKey := storageKeys(c.Name)
	for file, key := range map[string]string{baseFile: baseKey, syncFile: syncKey} {
		zipped := file + ".gz"
		if err := writer.GzipFile(file, zipped, gzip.DefaultCompression); err != nil {
			return err
		}
		if err := store.UploadFile(ctx, key, zipped); err != nil {
			return err
		}
		logger.Info("published %s as %s", file, key)
	}
	return nil
}

func runPlanRun(cmd *cobra.Command, args []string) error {
	c, timesteps, err := parseCaseArgs(args)
	if err != nil {
		return err
	}
	e, err := c.Build(engineConfig())
	if err != nil {
		return err
	}

	ctx, span := telemetry.Tracer("cli").Start(cmd.Context(), "plan.run")
	defer span.End()

	baseFile, syncFile := planFiles()
	if planDownload {
		store, err := storage.New(&cfg.Storage)
		if err != nil {
			return err
		}
		baseKey, syncKey := storageKeys(c.Name)
		for key, file := range map[string]string{baseKey: baseFile, syncKey: syncFile} {
			zipped := file + ".gz"
			if err := store.DownloadFile(ctx, key, zipped); err != nil {
				return err
			}
			if err := writer.GunzipFile(zipped, file); err != nil {
				return err
			}
			logger.Info("fetched %s into %s", key, file)
		}
	}

	p, err := plan.Load(c.Rank, baseFile, syncFile)
	if err != nil {
		return err
	}

	c.Reset()
	start := time.Now()
	if err := e.RunPlan(p, c.Kernel, c.Boundary); err != nil {
		return err
	}
	elapsed := time.Since(start)

	points := float64(c.Points()) * float64(timesteps)
	logger.Info("replayed %d base cases in %v (%.3g points/sec)",
		len(p.Base), elapsed, points/elapsed.Seconds())
	return nil
}
