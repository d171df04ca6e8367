// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"testing"

	"github.com/storagebench/perfreport/blobstore"
	"github.com/storagebench/perfreport/internal/config"
)

func TestOpenBucketsGCS(t *testing.T) {
	// Point the client at an emulator so no credentials are needed.
	t.Setenv("STORAGE_EMULATOR_HOST", "localhost:1")

	cfg := config.Default()
	cfg.Backend = "gcs"
	cfg.GCS.LogBucket = "logs"
	cfg.GCS.ReportBucket = "site"
	logs, site, closeAll, err := openBuckets(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := logs.(*blobstore.GCSBucket); !ok {
		t.Errorf("logs bucket is %T, want *blobstore.GCSBucket", logs)
	}
	if _, ok := site.(*blobstore.GCSBucket); !ok {
		t.Errorf("report bucket is %T, want *blobstore.GCSBucket", site)
	}
	if err := closeAll(); err != nil {
		t.Errorf("closing buckets: %v", err)
	}
}

func TestOpenBucketsAzureNoCredential(t *testing.T) {
	_, _, _, err := openBuckets(context.Background(), config.Default(), nil)
	if err == nil {
		t.Fatal("openBuckets succeeded without an Azure credential")
	}
}
