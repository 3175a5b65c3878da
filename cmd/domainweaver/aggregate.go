package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alvmarrod/domain-weaver/internal/aggregate"
	"github.com/alvmarrod/domain-weaver/internal/config"
	"github.com/alvmarrod/domain-weaver/internal/export"
	"github.com/alvmarrod/domain-weaver/internal/graph"
	"github.com/alvmarrod/domain-weaver/internal/metrics"
	"github.com/alvmarrod/domain-weaver/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newAggregateCommand() *cobra.Command {
	var territories []int64

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Build, store and export the domain graph of each territory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(territories) > 0 {
				if err := cfg.SetTerritoryIDs(territories); err != nil {
					return fmt.Errorf("--territory: %w", err)
				}
			}

			store, err := storage.NewStorage(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			tracker := metrics.NewTracker()
			runErr := runAggregation(cmd.Context(), cfg, store, tracker)

			reason := "completed"
			switch {
			case cmd.Context().Err() != nil:
				reason = "signal"
			case runErr != nil:
				reason = "failed"
			}

			logrus.Info("Final stats: " + tracker.LogProgress())
			if err := tracker.WriteToFile(cfg.MetricsPath, reason); err != nil {
				logrus.Errorf("Failed to write metrics: %v", err)
			} else {
				logrus.Infof("Metrics written to %s", cfg.MetricsPath)
			}

			return runErr
		},
	}

	cmd.Flags().Int64SliceVar(&territories, "territory", nil, "territory ids to aggregate (default: config, then all)")
	return cmd
}

// runAggregation aggregates every configured territory, at most cfg.ConcurrentRuns at a time.
// The first failure cancels the remaining runs.
func runAggregation(ctx context.Context, cfg *config.Config, store *storage.Storage, tracker *metrics.Tracker) error {
	territories := cfg.TerritoryIDs
	if len(territories) == 0 {
		all, err := store.ListTerritories(ctx)
		if err != nil {
			return err
		}
		territories = all
	}
	if len(territories) == 0 {
		logrus.Warn("No territory with pages found, nothing to aggregate")
		return nil
	}

	// Lookup tables are shared read-only by every run
	ranks, err := store.LoadDomainRanks(ctx)
	if err != nil {
		return err
	}
	domains, err := store.LoadExpressionDomains(ctx)
	if err != nil {
		return err
	}
	logrus.Infof("Loaded %d ranked hostnames and %d expression domains", len(ranks), len(domains))

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.ConcurrentRuns)

	for _, territoryID := range territories {
		territoryID := territoryID
		g.Go(func() error {
			if err := aggregateTerritory(gctx, cfg, store, territoryID, ranks, domains, tracker); err != nil {
				tracker.IncrementRunsFailed()
				return fmt.Errorf("territory %d: %w", territoryID, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func aggregateTerritory(ctx context.Context, cfg *config.Config, store *storage.Storage, territoryID int64,
	ranks aggregate.RankTable, domains aggregate.MetadataLookup, tracker *metrics.Tracker) error {
	logger := logrus.WithField("territory", territoryID)

	pages, err := store.LoadPageGraph(ctx, territoryID)
	if err != nil {
		return err
	}

	res, err := aggregate.Aggregate(pages, ranks, domains, aggregate.WithLogger(logger))
	if err != nil {
		return err
	}

	runID, err := store.SaveDomainGraph(ctx, territoryID, res.Graph)
	if err != nil {
		return err
	}
	if _, err := store.PruneRuns(ctx, territoryID, cfg.KeepRuns); err != nil {
		logger.Warnf("Failed to prune old runs: %v", err)
	}

	for _, format := range cfg.ExportFormats {
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("territory-%d.%s", territoryID, format))
		if err := exportTo(path, format, res.Graph); err != nil {
			return err
		}
		logger.Debugf("Exported %s", path)
	}
	tracker.RecordRun(res.Stats)

	logger.Infof("Run %s: %d pages -> %d domains, %d edges in %v",
		runID, res.Stats.Pages, res.Stats.Domains, res.Stats.DomainEdges, res.Stats.Duration.Round(time.Millisecond))
	return nil
}

func exportTo(path, format string, g *graph.Graph) error {
	exporter, err := export.ForFormat(format)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := exporter.Export(g, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

type storedRun struct {
	Run   *storage.Run         `json:"run"`
	Nodes []storedNode         `json:"nodes"`
	Edges []storage.DomainEdge `json:"edges"`
}

type storedNode struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

func showRun(ctx context.Context, store *storage.Storage, runID string, w io.Writer) error {
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	ids, attrs, err := store.LoadDomainNodes(ctx, runID)
	if err != nil {
		return err
	}
	edges, err := store.LoadDomainEdges(ctx, runID)
	if err != nil {
		return err
	}

	out := storedRun{Run: run, Edges: edges}
	for i, id := range ids {
		out.Nodes = append(out.Nodes, storedNode{ID: id, Attributes: attrs[i]})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
