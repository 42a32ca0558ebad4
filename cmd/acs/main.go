// Command acs materializes one ACS table into a CSV file, optionally compressed with lz4.
//
//	acs -config acs.yaml -table B01001 -out b01001.csv.lz4
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/assemble"
	"github.com/go-sif/acs/config"
	"github.com/go-sif/acs/fetch"
	"github.com/go-sif/acs/geo"
	"github.com/go-sif/acs/jurisdiction"
	"github.com/go-sif/acs/logging"
	"github.com/go-sif/acs/output"
	"github.com/go-sif/acs/record"
	"github.com/go-sif/acs/schema"
	"github.com/go-sif/acs/transform"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	tableID := flag.String("table", "", "table identifier, e.g. B01001")
	outPath := flag.String("out", "", "output file; a .lz4 suffix compresses the output")
	flag.Parse()

	if *tableID == "" || *outPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.CreateLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, logger, strings.ToUpper(*tableID), *outPath); err != nil {
		logger.Error("table build failed", "table", *tableID, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, tableID string, outPath string) error {
	cache, err := fetch.New(cfg.FetchConfig(logger))
	if err != nil {
		return err
	}
	table, err := loadTable(ctx, cfg, cache, tableID)
	if err != nil {
		return err
	}
	js := jurisdiction.CreateCached(jurisdiction.JSONLFile{Path: cfg.Sources.States})

	opener, err := record.CreateOpener(&record.ParserConf{})
	if err != nil {
		return err
	}
	var lookup acs.GeographyLookup
	if cfg.Sources.Geofile != "" {
		lookup, err = loadGeography(ctx, cfg, cache, js, logger)
		if err != nil {
			return err
		}
	}
	assembler, err := assemble.CreateAssembler(cfg.AssembleConfig(logger), js, cache, opener)
	if err != nil {
		return err
	}
	tr, err := transform.CreateTransformer(table, assembler.HeaderColumns(), lookup, nil)
	if err != nil {
		return err
	}
	w, err := output.Create(outPath, table.ColumnNames())
	if err != nil {
		return err
	}
	res, err := output.Materialize(ctx, assembler, table.Spec(), tr, w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	for abbr, ferr := range res.Failures {
		logger.Warn("jurisdiction skipped", "jurisdiction", abbr, "error", ferr)
	}
	logger.Info("table written",
		"table", table.ID,
		"run", res.RunID.String(),
		"rows", w.Rows(),
		"truncated", res.Truncated,
		"runtime", res.Stats.GetRuntime(),
	)
	return nil
}

func loadTable(ctx context.Context, cfg *config.Config, fetcher acs.Fetcher, tableID string) (*schema.Table, error) {
	path, err := fetcher.Fetch(ctx, cfg.Sources.Sequence)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tables, err := schema.ParseSequence(f, schema.SequenceConf{
		Year:       cfg.Year,
		Release:    cfg.Release,
		LimitedRun: cfg.Assembly.LimitedRun,
	})
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.ID == tableID {
			return t, nil
		}
	}
	return nil, fmt.Errorf("table %s is not defined in %s", tableID, cfg.Sources.Sequence)
}

func loadGeography(ctx context.Context, cfg *config.Config, cache *fetch.Cache, js acs.JurisdictionSource, logger *slog.Logger) (*geo.Lookup, error) {
	refs, err := js.Jurisdictions(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Assembly.LimitedRun && len(refs) > cfg.Assembly.LimitedJurisdictions {
		refs = refs[:cfg.Assembly.LimitedJurisdictions]
	}
	urls := make([]string, 0, len(refs))
	for _, j := range refs {
		urls = append(urls, cfg.GeofileURL(j.Abbreviation))
	}
	res, err := cache.Prefetch(ctx, urls)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	opener, err := record.CreateOpener(&record.ParserConf{Latin1: true})
	if err != nil {
		return nil, err
	}
	lookup := geo.CreateLookup()
	for _, url := range urls {
		it, err := opener.Open(res.Paths[url], "")
		if err != nil {
			return nil, err
		}
		n, err := lookup.Load(it, geo.DefaultColumns)
		it.Close()
		if err != nil {
			return nil, err
		}
		logger.Debug("geofile loaded", "url", url, "records", n)
	}
	return lookup, nil
}
