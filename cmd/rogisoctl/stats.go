package main

import (
	"github.com/spf13/cobra"

	"github.com/dragonation/rogiso-go/collector"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Construct an isolate and print its statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func runStats() error {
	logger := newLogger().Named("stats")

	iso, err := newIsolate()
	if err != nil {
		return err
	}
	c := collector.NewCollector(iso)

	stats, err := iso.Stats()
	if err != nil {
		return err
	}
	cstats := c.Stats()

	logger.Info("isolate stats",
		"regions", stats.RegionCount,
		"liveSlots", stats.LiveSlotCount,
		"nursery", stats.NurseryCount,
		"roots", stats.RootCount,
		"symbolScopes", stats.SymbolScopes,
		"collectorState", cstats.State,
		"grayQueueDepth", cstats.GrayQueueDepth,
		"lastCycleDuration", cstats.LastCycleDuration,
	)
	return nil
}
