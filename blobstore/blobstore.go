// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blobstore reads benchmark logs from, and publishes reports
// to, cloud object storage.
package blobstore

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by Bucket methods for missing objects.
var ErrNotExist = errors.New("object does not exist")

// Attrs are the attributes of a stored object.
type Attrs struct {
	ContentType string
	MD5         []byte // may be nil if the store did not record it
	Size        int64
}

// A Bucket is a flat namespace of objects.
type Bucket interface {
	// List returns the names of the objects whose names start with
	// prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Read returns the contents of the named object.
	Read(ctx context.Context, name string) ([]byte, error)
	// Attrs returns the attributes of the named object.
	Attrs(ctx context.Context, name string) (*Attrs, error)
	// Write creates or replaces the named object. attrs.Size is
	// ignored.
	Write(ctx context.Context, name string, data []byte, attrs Attrs) error
	// URL returns the address of the named object.
	URL(name string) string
}

// A Publisher writes objects to a Bucket, skipping objects whose stored
// MD5 already matches.
type Publisher struct {
	Bucket Bucket

	// DryRun writes objects under Dir on the local file system
	// instead of uploading them. The bucket, if set, is still
	// consulted to report what would be published.
	DryRun bool
	Dir    string

	Logger *slog.Logger
}

func (p *Publisher) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Publish stores data as the named object with the given content type.
// It reports whether the object changed (or would have, in a dry run).
func (p *Publisher) Publish(ctx context.Context, name string, data []byte, contentType string) (bool, error) {
	if p.DryRun {
		file := filepath.Join(p.Dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(file), 0o777); err != nil {
			return false, err
		}
		if err := os.WriteFile(file, data, 0o666); err != nil {
			return false, err
		}
	}

	sum := md5.Sum(data)
	if p.Bucket != nil {
		attrs, err := p.Bucket.Attrs(ctx, name)
		switch {
		case err == nil:
			if bytes.Equal(attrs.MD5, sum[:]) {
				p.logger().DebugContext(ctx, "unchanged", "name", name)
				return false, nil
			}
		case errors.Is(err, ErrNotExist):
		default:
			return false, fmt.Errorf("publishing %s: %w", name, err)
		}
	}

	p.logger().InfoContext(ctx, "publishing", "name", name, "dryrun", p.DryRun)
	if p.DryRun || p.Bucket == nil {
		return true, nil
	}
	if err := p.Bucket.Write(ctx, name, data, Attrs{ContentType: contentType, MD5: sum[:]}); err != nil {
		return false, fmt.Errorf("publishing %s: %w", name, err)
	}
	return true, nil
}
