// pkg/cleaner/parallel.go
package cleaner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// CleanParallel produces the same tables as Clean, overlapping the independent steps.
// Each task writes only its own output; the first task error is returned once all
// tasks of that stage have finished. Siblings are not cancelled.
func (p *Pipeline) CleanParallel(ctx context.Context, violations, inspections, inventory *model.Table) (*Result, error) {
	report := p.newReport("parallel", violations, inspections, inventory)

	if err := checkPrecondition(inspections); err != nil {
		return nil, err
	}

	// Stage A: inspections chain, violations join, inventory derivation
	var (
		derivedInspections *model.Table
		derivedInventory   *model.Table
		joined             *JoinResult
		g                  errgroup.Group
	)
	g.Go(func() error {
		var (
			pruned *model.Table
			err    error
		)
		report.time("prune", func() { pruned, report.DroppedColumns = PruneColumns(inspections) })

		var dated *model.Table
		report.time("dates", func() { dated, err = NormalizeDates(pruned, model.ColActivityDate) })
		if err != nil {
			return err
		}

		report.time("derive", func() { derivedInspections, err = DeriveSeatNumbers(dated, model.ColDescription) })
		return err
	})
	g.Go(func() error {
		// The projection only reads zip code and serial number, which pruning,
		// date parsing and derivation never touch.
		var err error
		report.time("join", func() { joined, err = JoinSerialNumbers(violations, inspections) })
		if err != nil {
			return fmt.Errorf("failed to join violations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		report.time("derive", func() { derivedInventory, err = DeriveSeatNumbers(inventory, model.ColDescription) })
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage B: inactive list depends on the derived inspections
	inactive, keys, err := inactiveKeys(derivedInspections)
	if err != nil {
		return nil, err
	}

	// Stage C: the three filters read disjoint inputs
	var (
		cleanedInventory   *model.Table
		cleanedViolations  *model.Table
		cleanedInspections *model.Table
		exclude            errgroup.Group
	)
	exclude.Go(func() error {
		var err error
		report.time("exclude", func() { cleanedInventory, err = DeleteByFacilityID(keys.FacilityIDs, derivedInventory) })
		return err
	})
	exclude.Go(func() error {
		var err error
		report.time("exclude", func() { cleanedViolations, err = DeleteBySerialNumber(keys.SerialNumbers, joined.Table) })
		return err
	})
	exclude.Go(func() error {
		var err error
		report.time("exclude", func() { cleanedInspections, err = RemoveInactive(derivedInspections) })
		return err
	})
	if err := exclude.Wait(); err != nil {
		return nil, err
	}

	return p.finish(report, stageOutput{
		joined:      joined,
		inspections: derivedInspections,
		inventory:   derivedInventory,
		inactive:    inactive,
		keys:        keys,
	}, cleanedViolations, cleanedInspections, cleanedInventory), nil
}
