// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchreport renders storage benchmark logs as HTML reports.
//
// Usage:
//
//	benchreport [flags]
//	benchreport [flags] file...
//
// With no arguments, benchreport reads every raw benchmark log from the
// log container, groups the runs by SDK library versions, and publishes
// one report per group plus an index page to the report container.
// Reports whose content did not change are not uploaded again. If the
// DRY_RUN environment variable is set to TRUE, ON, 1 or YES, the
// reports are written under -dry-run-dir instead.
//
// With file arguments, benchreport parses the given local logs (which
// may be gzip-compressed), writes an HTML report of all of them to
// -o, and prints a text table per log to standard output.
//
// Storage account and VM descriptions are looked up in Azure using the
// subscription in AZURE_SUBSCRIPTION_ID and cached in the database
// named by -cache-driver and -cache-dsn. GitHub releases are read
// anonymously unless GITHUB_TOKEN is set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"github.com/storagebench/perfreport/benchlog"
	"github.com/storagebench/perfreport/benchsuite"
	"github.com/storagebench/perfreport/blobstore"
	"github.com/storagebench/perfreport/cloudinfo"
	"github.com/storagebench/perfreport/internal/config"
	"github.com/storagebench/perfreport/internal/lookupdb"
	_ "github.com/storagebench/perfreport/internal/lookupdb/sqlite3"
	"github.com/storagebench/perfreport/pipeline"
	"github.com/storagebench/perfreport/release"
	"github.com/storagebench/perfreport/report"
)

var (
	verbose = flag.Bool("v", false, "print debug log messages")
	output  = flag.String("o", "reports.html", "write the local report to `file`")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of benchreport:
	benchreport [flags]
	benchreport [flags] file...
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("benchreport: ")
	log.SetFlags(0)
	flag.Usage = usage
	build := config.Flags(flag.CommandLine, os.Getenv)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := build()
	if err != nil {
		log.Print(err)
		usage()
	}

	ctx := context.Background()
	az := newAzure(cfg, logger)
	resolver, closeCache := newResolver(cfg, az, logger)
	defer closeCache()

	if flag.NArg() > 0 {
		if !runLocal(ctx, resolver, flag.Args()) {
			closeCache()
			os.Exit(1)
		}
		return
	}
	if err := runPipeline(ctx, cfg, az, resolver, logger); err != nil {
		closeCache()
		log.Fatal(err)
	}
}

// newAzure returns the Azure resource client, or nil if no credential
// is available.
func newAzure(cfg *config.Config, logger *slog.Logger) *cloudinfo.Azure {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		logger.Warn("no Azure credential; resources will not be described", "err", err)
		return nil
	}
	return &cloudinfo.Azure{SubscriptionID: cfg.Azure.SubscriptionID, Credential: cred}
}

// newResolver returns a metadata resolver backed by the configured
// cache database, and a function that closes the database.
func newResolver(cfg *config.Config, az *cloudinfo.Azure, logger *slog.Logger) (*cloudinfo.Resolver, func()) {
	var db *lookupdb.DB
	if cfg.Cache.DSN != "" {
		var err error
		db, err = lookupdb.OpenSQL(cfg.Cache.Driver, cfg.Cache.DSN)
		if err != nil {
			logger.Warn("lookup cache unavailable; lookups will not persist", "driver", cfg.Cache.Driver, "err", err)
			db = nil
		}
	}
	r := &cloudinfo.Resolver{
		Cache:   cloudinfo.NewCache(db, logger),
		Timeout: cfg.LookupTimeout,
		Logger:  logger,
	}
	if az != nil {
		r.Accounts, r.VMs = az, az
	}
	return r, func() {
		if db != nil {
			db.Close()
			db = nil
		}
	}
}

// runLocal reports on local log files. It reports whether every file
// was parsed.
func runLocal(ctx context.Context, res benchsuite.Resolver, paths []string) bool {
	files := &benchlog.Files{Paths: paths, AllowStdin: true}
	defer files.Close()
	ok := true
	var suites []*benchsuite.Suite
	for files.Scan() {
		s, err := benchsuite.ParseReader(ctx, files.Reader(), files.Path(), res)
		if err != nil {
			log.Print(err)
			ok = false
			continue
		}
		suites = append(suites, s)
	}
	if err := files.Err(); err != nil {
		log.Print(err)
		return false
	}
	if len(suites) == 0 {
		return false
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Print(err)
		return false
	}
	if err := report.WriteHTML(f, report.Title, suites); err != nil {
		f.Close()
		log.Print(err)
		return false
	}
	if err := f.Close(); err != nil {
		log.Print(err)
		return false
	}

	for i, s := range suites {
		if i > 0 {
			fmt.Println()
		}
		if err := report.WriteText(os.Stdout, s); err != nil {
			log.Print(err)
			return false
		}
	}
	return ok
}

func runPipeline(ctx context.Context, cfg *config.Config, az *cloudinfo.Azure, res benchsuite.Resolver, logger *slog.Logger) error {
	logs, site, closeBuckets, err := openBuckets(ctx, cfg, az)
	if err != nil {
		return err
	}
	defer closeBuckets()

	gh, err := release.NewGitHub(ctx, cfg.Release.Repo, cfg.Release.Token)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Logs: logs,
		Publisher: &blobstore.Publisher{
			Bucket: site,
			DryRun: cfg.DryRun,
			Dir:    cfg.DryRunDir,
			Logger: logger,
		},
		Resolver: res,
		Releases: &release.Fetcher{Source: gh, Logger: logger, Timeout: cfg.LookupTimeout},
		Workers:  cfg.Workers,
		Logger:   logger,
	}
	result, err := p.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("done",
		"suites", len(result.Suites),
		"skipped", len(result.Failed),
		"reports", len(result.Reports),
		"changed", result.Changed)
	return nil
}

// openBuckets opens the log and report buckets of the configured
// backend. The returned function releases them.
func openBuckets(ctx context.Context, cfg *config.Config, az *cloudinfo.Azure) (logs, site blobstore.Bucket, closeAll func() error, err error) {
	switch cfg.Backend {
	case "gcs":
		l, err := blobstore.NewGCS(ctx, cfg.GCS.LogBucket)
		if err != nil {
			return nil, nil, nil, err
		}
		s, err := blobstore.NewGCS(ctx, cfg.GCS.ReportBucket)
		if err != nil {
			l.Close()
			return nil, nil, nil, err
		}
		return l, s, func() error {
			return errors.Join(l.Close(), s.Close())
		}, nil
	}

	if az == nil {
		return nil, nil, nil, fmt.Errorf("cannot get key of storage account %s: no Azure credential", cfg.Azure.Account)
	}
	key, err := az.AccountKey(ctx, cfg.Azure.Account)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cannot get key of storage account %s: %w", cfg.Azure.Account, err)
	}
	l, err := blobstore.NewAzure(cfg.Azure.Account, key, cfg.Azure.LogContainer, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	ok, err := l.Exists(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if !ok {
		return nil, nil, nil, fmt.Errorf("container %s does not exist in storage account %s", cfg.Azure.LogContainer, cfg.Azure.Account)
	}
	s, err := blobstore.NewAzure(cfg.Azure.Account, key, cfg.Azure.ReportContainer, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return l, s, func() error { return nil }, nil
}
