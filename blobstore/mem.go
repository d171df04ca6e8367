// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blobstore

import (
	"context"
	"crypto/md5"
	"slices"
	"strings"
	"sync"
)

// MemBucket is an in-memory Bucket.
type MemBucket struct {
	mu      sync.Mutex
	objects map[string]memObject
	writes  int
}

type memObject struct {
	data  []byte
	attrs Attrs
}

// NewMemBucket returns an empty MemBucket.
func NewMemBucket() *MemBucket {
	return &MemBucket{objects: make(map[string]memObject)}
}

// Put stores data as the named object, recording its MD5. It does not
// count as a write.
func (b *MemBucket) Put(name string, data []byte) {
	sum := md5.Sum(data)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[name] = memObject{slices.Clone(data), Attrs{MD5: sum[:], Size: int64(len(data))}}
}

// Writes returns the number of calls to Write.
func (b *MemBucket) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func (b *MemBucket) List(ctx context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for name := range b.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (b *MemBucket) Read(ctx context.Context, name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objects[name]
	if !ok {
		return nil, ErrNotExist
	}
	return slices.Clone(o.data), nil
}

func (b *MemBucket) Attrs(ctx context.Context, name string) (*Attrs, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objects[name]
	if !ok {
		return nil, ErrNotExist
	}
	a := o.attrs
	return &a, nil
}

func (b *MemBucket) Write(ctx context.Context, name string, data []byte, attrs Attrs) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	attrs.Size = int64(len(data))
	b.objects[name] = memObject{slices.Clone(data), attrs}
	b.writes++
	return nil
}

func (b *MemBucket) URL(name string) string {
	return "https://memory.invalid/" + name
}
