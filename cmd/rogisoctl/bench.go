package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/collector"
)

var (
	benchObjects int
	benchCycles  int
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "bench", Short: "Run a synthetic workload against an isolate"}
	cmd.AddCommand(newBenchAllocCmd())
	return cmd
}

func newBenchAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc",
		Short: "Allocate a churn of objects and force collection cycles, reporting timing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchAlloc()
		},
	}
	cmd.Flags().IntVar(&benchObjects, "objects", 10000, "objects to allocate per cycle")
	cmd.Flags().IntVar(&benchCycles, "cycles", 4, "allocate/collect cycles to run")
	return cmd
}

func runBenchAlloc() error {
	logger := newLogger().Named("bench.alloc")

	iso, err := newIsolate()
	if err != nil {
		return err
	}
	c := collector.NewCollector(iso)

	regionID, err := iso.CreateRegion()
	if err != nil {
		return err
	}
	if err := iso.UnprotectRegion(regionID); err != nil {
		return err
	}

	for cycle := 0; cycle < benchCycles; cycle++ {
		allocStart := time.Now()
		var last base.Value
		for i := 0; i < benchObjects; i++ {
			v, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
			if err != nil {
				return err
			}
			if err := iso.MoveValueOutFromNursery(v); err != nil {
				return err
			}
			last = v
		}
		allocDuration := time.Since(allocStart)

		// Root exactly one survivor per cycle so collection has real sweep
		// work to do without reclaiming everything.
		if _, err := iso.AddRoot(last); err != nil {
			return err
		}

		if err := c.RequestToCollect(); err != nil {
			return err
		}

		stats, err := iso.Stats()
		if err != nil {
			return err
		}
		cstats := c.Stats()

		logger.Info("cycle complete",
			"cycle", cycle,
			"allocDuration", allocDuration,
			"collectDuration", cstats.LastCycleDuration,
			"liveSlots", stats.LiveSlotCount,
			"regions", stats.RegionCount,
		)
	}

	fmt.Println("bench alloc complete")
	return nil
}
