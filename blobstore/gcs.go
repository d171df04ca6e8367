// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSBucket is a Bucket in Google Cloud Storage.
type GCSBucket struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewGCS returns a GCSBucket for the named bucket.
func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSBucket, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSBucket{client: client, bucket: client.Bucket(bucket), name: bucket}, nil
}

// Close closes the underlying client.
func (b *GCSBucket) Close() error {
	return b.client.Close()
}

func (b *GCSBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing gs://%s/%s: %w", b.name, prefix, err)
		}
		names = append(names, attrs.Name)
	}
}

func (b *GCSBucket) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := b.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, b.wrap(name, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *GCSBucket) Attrs(ctx context.Context, name string) (*Attrs, error) {
	attrs, err := b.bucket.Object(name).Attrs(ctx)
	if err != nil {
		return nil, b.wrap(name, err)
	}
	return &Attrs{ContentType: attrs.ContentType, MD5: attrs.MD5, Size: attrs.Size}, nil
}

func (b *GCSBucket) Write(ctx context.Context, name string, data []byte, attrs Attrs) error {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = attrs.ContentType
	w.MD5 = attrs.MD5
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (b *GCSBucket) URL(name string) string {
	return "https://storage.googleapis.com/" + b.name + "/" + (&url.URL{Path: name}).EscapedPath()
}

func (b *GCSBucket) wrap(name string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gs://%s/%s: %w", b.name, name, ErrNotExist)
	}
	return fmt.Errorf("gs://%s/%s: %w", b.name, name, err)
}
