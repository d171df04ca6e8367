// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// AzureBucket is a Bucket backed by an Azure Blob Storage container.
type AzureBucket struct {
	c *container.Client
}

// AccountURL returns the blob service URL of a storage account.
func AccountURL(account string) string {
	return "https://" + account + ".blob.core.windows.net/"
}

// NewAzure returns an AzureBucket for a container of the given storage
// account, authenticated with an account key. opts may be nil.
func NewAzure(account, key, containerName string, opts *container.ClientOptions) (*AzureBucket, error) {
	return NewAzureAt(AccountURL(account), account, key, containerName, opts)
}

// NewAzureAt is like NewAzure, but for an explicit service URL such as
// that of a storage emulator.
func NewAzureAt(serviceURL, account, key, containerName string, opts *container.ClientOptions) (*AzureBucket, error) {
	cred, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, err
	}
	c, err := container.NewClientWithSharedKeyCredential(serviceURL+containerName, cred, opts)
	if err != nil {
		return nil, err
	}
	return &AzureBucket{c: c}, nil
}

// Exists reports whether the container exists.
func (b *AzureBucket) Exists(ctx context.Context) (bool, error) {
	_, err := b.c.GetProperties(ctx, nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.ContainerNotFound) || isStatus(err, http.StatusNotFound) {
		return false, nil
	}
	return false, err
}

func (b *AzureBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	opts := &container.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}
	pager := b.c.NewListBlobsFlatPager(opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", b.c.URL(), err)
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item != nil && item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

func (b *AzureBucket) Read(ctx context.Context, name string) ([]byte, error) {
	resp, err := b.c.NewBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		return nil, b.wrap(name, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (b *AzureBucket) Attrs(ctx context.Context, name string) (*Attrs, error) {
	props, err := b.c.NewBlobClient(name).GetProperties(ctx, nil)
	if err != nil {
		return nil, b.wrap(name, err)
	}
	a := &Attrs{MD5: props.ContentMD5}
	if props.ContentType != nil {
		a.ContentType = *props.ContentType
	}
	if props.ContentLength != nil {
		a.Size = *props.ContentLength
	}
	return a, nil
}

func (b *AzureBucket) Write(ctx context.Context, name string, data []byte, attrs Attrs) error {
	headers := &blob.HTTPHeaders{BlobContentMD5: attrs.MD5}
	if attrs.ContentType != "" {
		headers.BlobContentType = &attrs.ContentType
	}
	_, err := b.c.NewBlockBlobClient(name).UploadBuffer(ctx, data, &blockblob.UploadBufferOptions{HTTPHeaders: headers})
	if err != nil {
		return b.wrap(name, err)
	}
	return nil
}

func (b *AzureBucket) URL(name string) string {
	return b.c.NewBlobClient(name).URL()
}

func (b *AzureBucket) wrap(name string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound) || isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("%s: %w", b.URL(name), ErrNotExist)
	}
	return fmt.Errorf("%s: %w", b.URL(name), err)
}

func isStatus(err error, code int) bool {
	var re *azcore.ResponseError
	return errors.As(err, &re) && re.StatusCode == code
}
