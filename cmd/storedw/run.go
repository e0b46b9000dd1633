package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"storedw/internal/config"
	"storedw/internal/metrics"
	"storedw/internal/parser/csv"
	"storedw/internal/quality"
	"storedw/internal/storage"
	"storedw/internal/warehouse"
	"storedw/pkg/records"
)

// cleaned is one dataset's output from the quality engine.
type cleaned struct {
	rows   []records.Record
	report *quality.Report
}

// runWarehouse executes one full run: clean the three extracts concurrently,
// open the store, ensure the schema, refresh the warehouse, and optionally run
// the analytical catalogue. Errors name the failing stage.
func runWarehouse(ctx context.Context, run config.Run, queries bool) error {
	inputs := []struct {
		name string
		ds   config.Dataset
	}{
		{"customers", run.Datasets.Customers},
		{"products", run.Datasets.Products},
		{"sales", run.Datasets.Sales},
	}

	out := make([]cleaned, len(inputs))
	cleanStart := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := cleanDataset(in.name, in.ds, run.Quality)
			if err != nil {
				return fmt.Errorf("clean %s: %w", in.name, err)
			}
			out[i] = c
			return nil
		})
	}
	err := g.Wait()
	metrics.RecordStep(run.Job, "clean", err, time.Since(cleanStart))
	if err != nil {
		return err
	}
	for _, c := range out {
		for reason, n := range c.report.Removed {
			metrics.RecordRows(c.report.Dataset, "removed:"+reason, int64(n))
		}
		log.Printf("clean: %s", c.report.Summary())
	}

	repo, err := storage.New(ctx, storage.Config{
		Kind:      run.Warehouse.Kind,
		DSN:       run.Warehouse.DSN,
		BatchSize: run.Warehouse.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	if err := storage.EnsureSchema(ctx, run.Warehouse.Kind, repo, warehouse.Tables); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	dimStart, dimEnd, err := run.DateDimRange()
	if err != nil {
		return fmt.Errorf("date dimension range: %w", err)
	}

	loadStart := time.Now()
	loader := warehouse.NewLoader(repo, run.Warehouse.BatchSize, dimStart, dimEnd)
	res, err := loader.Load(ctx, out[0].rows, out[1].rows, out[2].rows)
	metrics.RecordStep(run.Job, "load", err, time.Since(loadStart))
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	log.Printf("load: customers=%d products=%d dates=%d sales=%d duration=%s",
		res.Customers, res.Products, res.Dates, res.Sales,
		res.Duration.Truncate(time.Millisecond))

	if !queries {
		return nil
	}

	queryStart := time.Now()
	results, err := warehouse.NewAnalytics(repo).RunAll(ctx)
	metrics.RecordStep(run.Job, "query", err, time.Since(queryStart))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode query %s: %w", r.Name, err)
		}
	}
	return nil
}

// cleanDataset parses one raw extract and runs its quality pipeline.
func cleanDataset(name string, ds config.Dataset, q config.Quality) (cleaned, error) {
	contract, headerMap, ok := quality.ContractFor(name)
	if !ok {
		return cleaned{}, fmt.Errorf("no contract for dataset %q", name)
	}
	if len(ds.HeaderMap) > 0 {
		headerMap = ds.HeaderMap
	}
	if q.AmountTolerance > 0 {
		cross := make([]quality.CrossRule, len(contract.Cross))
		copy(cross, contract.Cross)
		for i := range cross {
			cross[i].Tolerance = q.AmountTolerance
		}
		contract.Cross = cross
	}

	f, err := os.Open(ds.Path)
	if err != nil {
		return cleaned{}, err
	}
	defer f.Close()

	opt := csv.Options{TrimSpace: true, HeaderMap: headerMap}
	if ds.Comma != "" {
		opt.Comma = []rune(ds.Comma)[0]
	}
	parsed, err := csv.Parse(f, opt)
	if err != nil {
		return cleaned{}, err
	}
	if parsed.Skipped > 0 {
		log.Printf("parse: dataset=%s skipped=%d (row width mismatch)", name, parsed.Skipped)
	}

	rows, rep, err := quality.NewEngine(contract, q.IQRMultiplier).Run(parsed.Rows, parsed.Columns)
	if err != nil {
		return cleaned{}, err
	}
	return cleaned{rows: rows, report: rep}, nil
}
