package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/collector"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/isolate"
)

type scenario struct {
	name        string
	description string
	run         func(iso *isolate.Isolate) error
}

var scenarios = []scenario{
	{
		name:        "symbol-interning",
		description: "symbols with the same scope and text intern to the same id; different scopes never collide",
		run:         scenarioSymbolInterning,
	},
	{
		name:        "forwarding-survives-mutation",
		description: "a root observes a moved slot's forwarding address and its mutated properties",
		run:         scenarioForwardingSurvivesMutation,
	},
	{
		name:        "gc-reclaims-unreachable",
		description: "a collector cycle reclaims a value once every root and reference to it is gone",
		run:         scenarioGCReclaimsUnreachable,
	},
	{
		name:        "field-shortcut-staleness",
		description: "a cached field token observes staleness when its template changes and recovers on refresh",
		run:         scenarioFieldShortcutStaleness,
	},
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario <name>",
		Short: "Run one end-to-end scenario and report pass/fail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(args[0])
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			listScenarios()
			return nil
		},
	})
	return cmd
}

func listScenarios() {
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
}

func runScenario(name string) error {
	for _, s := range scenarios {
		if s.name != name {
			continue
		}
		logger := newLogger().Named("scenario").With("scenario", s.name)
		iso, err := newIsolate()
		if err != nil {
			return err
		}
		if err := s.run(iso); err != nil {
			logger.Error("scenario failed", "error", err)
			return fmt.Errorf("scenario %q failed: %w", name, err)
		}
		logger.Info("scenario passed")
		return nil
	}
	return fmt.Errorf("unknown scenario %q (see %q)", name, "rogisoctl scenario list")
}

// scenarioSymbolInterning covers S1: two gets of the same scoped text
// intern to the same symbol, and a different scope never collides with it.
func scenarioSymbolInterning(iso *isolate.Isolate) error {
	a := iso.GetTextSymbol("scope", "name")
	b := iso.GetTextSymbol("scope", "name")
	c := iso.GetTextSymbol("other", "name")

	if a != b {
		return fmt.Errorf("expected same-scope same-text symbols to be equal")
	}
	if a == c {
		return fmt.Errorf("expected different-scope symbols to differ")
	}

	if err := iso.AddSymbolReference(a); err != nil {
		return err
	}
	if err := iso.RemoveSymbolReference(a); err != nil {
		return err
	}
	return iso.RecycleSymbol(a)
}

// scenarioForwardingSurvivesMutation covers S3: a root follows a value
// through a MoveSlot, and properties set before the move are visible
// through the forwarding address afterward.
func scenarioForwardingSurvivesMutation(iso *isolate.Isolate) error {
	sourceRegion, err := iso.CreateRegion()
	if err != nil {
		return err
	}
	if err := iso.UnprotectRegion(sourceRegion); err != nil {
		return err
	}
	targetRegion, err := iso.CreateRegion()
	if err != nil {
		return err
	}
	if err := iso.UnprotectRegion(targetRegion); err != nil {
		return err
	}

	v, err := iso.GainSlotInRegion(sourceRegion, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	if err != nil {
		return err
	}
	if err := iso.MoveValueOutFromNursery(v); err != nil {
		return err
	}

	r, err := iso.AddRoot(v)
	if err != nil {
		return err
	}

	k := iso.GetTextSymbol("scenario", "k")
	if err := iso.SetOwnProperty(v, k, base.MakeFloat(3.14)); err != nil {
		return err
	}

	moved, err := iso.MoveSlot(v, targetRegion)
	if err != nil {
		return err
	}

	if r.GetValue() != moved {
		return fmt.Errorf("root did not follow the moved slot")
	}
	resolved, err := iso.ResolveRealValue(v)
	if err != nil {
		return err
	}
	if resolved != moved {
		return fmt.Errorf("resolve_real_value did not follow the forwarding address")
	}
	prop, err := iso.GetOwnProperty(moved, k, nil)
	if err != nil {
		return err
	}
	if prop != base.MakeFloat(3.14) {
		return fmt.Errorf("property did not survive the move")
	}
	alive, err := iso.IsDirectValueAlive(v)
	if err != nil {
		return err
	}
	if alive {
		return fmt.Errorf("expected the forwarding slot itself to no longer be directly alive")
	}
	return nil
}

// scenarioGCReclaimsUnreachable covers S4: once every root and reference to
// a value is gone, a full collection reclaims it.
func scenarioGCReclaimsUnreachable(iso *isolate.Isolate) error {
	regionID, err := iso.CreateRegion()
	if err != nil {
		return err
	}
	if err := iso.UnprotectRegion(regionID); err != nil {
		return err
	}

	v, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	if err != nil {
		return err
	}
	if err := iso.MoveValueOutFromNursery(v); err != nil {
		return err
	}

	drops := 0
	weakRoot, err := iso.AddWeakRoot(v, dropListener(func() { drops++ }))
	if err != nil {
		return err
	}

	c := collector.NewCollector(iso)
	if err := c.RequestToCollect(); err != nil {
		return err
	}

	alive, err := iso.IsDirectValueAlive(v)
	if err != nil {
		return err
	}
	if alive {
		return fmt.Errorf("expected the unrooted, unreferenced value to be reclaimed")
	}
	if !weakRoot.IsDropped() {
		return fmt.Errorf("expected the weak root to observe the drop")
	}
	if drops != 1 {
		return fmt.Errorf("expected the drop listener to fire exactly once, it fired %d times", drops)
	}
	return nil
}

type dropListener func()

func (f dropListener) NotifyDrop() { f() }

// scenarioFieldShortcutStaleness covers S6: a token cached against one
// template version observes the template changing and recovers on refresh.
func scenarioFieldShortcutStaleness(iso *isolate.Isolate) error {
	template := fieldshortcuts.NewFieldTemplate(1)
	x := iso.GetTextSymbol("scenario", "x")
	y := iso.GetTextSymbol("scenario", "y")

	if _, err := template.AddSymbol(x); err != nil {
		return err
	}
	if _, err := template.AddSymbol(y); err != nil {
		return err
	}

	shortcuts := fieldshortcuts.NewFieldShortcuts(template)
	token, ok := template.GetFieldToken(x)
	if !ok {
		return fmt.Errorf("expected a field token for x")
	}

	token.SetField(shortcuts, base.MakeFloat(1))
	if _, found := token.GetField(shortcuts); !found {
		return fmt.Errorf("expected the cached read to find the value")
	}

	if err := template.RemoveSymbol(y); err != nil {
		return err
	}

	if _, found := token.GetField(shortcuts); found {
		return fmt.Errorf("expected the stale token's first read to miss")
	}
	if token.Version() != template.Version() {
		return fmt.Errorf("expected the stale read to refresh the token to the template's version")
	}

	token.SetField(shortcuts, base.MakeFloat(1))
	value, found := token.GetField(shortcuts)
	if !found {
		return fmt.Errorf("expected the refreshed token to find the value")
	}
	if value != base.MakeFloat(1) {
		return fmt.Errorf("expected the refreshed read to still observe the same value")
	}
	return nil
}
