package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gfatools/getblunted/pkg/bluntify"
	"github.com/gfatools/getblunted/pkg/cache"
	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/gfa"
	"github.com/gfatools/getblunted/pkg/poa"
)

const timeRounding = time.Millisecond

// newRunCmd builds the root bluntify command.
func newRunCmd() *cobra.Command {
	var (
		provenancePath string
		configPath     string
		workers        int
		cacheDir       string
		debugDir       string
	)

	cmd := &cobra.Command{
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if cacheDir != "" {
				cfg.CacheDir = cacheDir
			}
			if debugDir != "" {
				cfg.DebugDir = debugDir
			}

			input, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", args[0])
			}
			defer input.Close()

			p := newProgress(logger)
			graph, idMap, overlaps, err := gfa.Read(input)
			if err != nil {
				return err
			}
			p.done("read GFA")
			logger.Debug("segments interned", "count", idMap.Len(), "overlaps", overlaps.Len())
			for id := int64(1); id <= int64(idMap.Len()); id++ {
				logger.Debug("segment", "id", id, "name", idMap.GetName(id))
			}

			var alignCache cache.Store = cache.NewNullStore()
			if cfg.CacheDir != "" {
				alignCache, err = cache.NewDirStore(cfg.CacheDir)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "open cache dir %s", cfg.CacheDir)
				}
			}
			defer alignCache.Close()

			scores := poa.DefaultScores()
			if cfg.Match != 0 || cfg.Mismatch != 0 || cfg.Gap != 0 {
				scores = poa.Scores{Match: cfg.Match, Mismatch: cfg.Mismatch, Gap: cfg.Gap}
			}

			spinner := newSpinner(ctx, "bluntifying")
			spinner.Start()
			b := bluntify.New(graph, idMap, overlaps, bluntify.Options{
				Workers:         cfg.Workers,
				ExactCoverBound: cfg.ExactCoverBound,
				Scores:          scores,
				Cache:           alignCache,
				DebugDir:        cfg.DebugDir,
				Logger:          logger,
			})
			result, err := b.Run(ctx)
			spinner.Stop()
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			if store, ok := alignCache.(*cache.DirStore); ok {
				maxEntries := cfg.CacheMaxEntries
				if maxEntries == 0 {
					maxEntries = 4096
				}
				if err := store.Prune(maxEntries); err != nil {
					logger.Warn("prune alignment cache", "err", err)
				}
			}

			if err := gfa.Write(os.Stdout, b.Graph); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write output GFA")
			}

			if provenancePath != "" {
				f, err := os.Create(provenancePath)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", provenancePath)
				}
				defer f.Close()
				if err := b.WriteProvenance(f); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "write provenance")
				}
				printInfo("provenance written to %s", provenancePath)
			}

			printSuccess("bluntified %d nodes into %d (%d edges) in %s",
				result.NodesIn, result.NodesOut, result.EdgesOut, result.Duration.Round(timeRounding))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provenancePath, "provenance", "p", "", "write a provenance table to this path")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with pipeline tunables")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default: one per CPU)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "memoize alignments in this directory")
	cmd.Flags().StringVar(&debugDir, "debug-dir", "", "write per-phase GFA snapshots here")
	return cmd
}
