// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cloudinfo describes the cloud resources a benchmark ran
// against: the storage account and the virtual machine.
//
// Lookups never fail. A lookup that cannot be completed is logged and
// described as Unknown.
package cloudinfo

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Unknown describes a resource that could not be looked up.
const Unknown = "unknown"

// Cache kinds.
const (
	kindAccount = "storage_account_info"
	kindVM      = "azure_vm_info"
)

var (
	// ErrNoSubscription is returned for account lookups when no
	// subscription is configured.
	ErrNoSubscription = errors.New("no Azure subscription configured")
	// ErrAccountNotFound is returned when a storage account does not
	// exist in the subscription.
	ErrAccountNotFound = errors.New("storage account not found")
)

// An AccountDescriber describes storage accounts by name.
type AccountDescriber interface {
	DescribeAccount(ctx context.Context, name string) (string, error)
}

// A VMDescriber describes virtual machines by resource ID.
type VMDescriber interface {
	DescribeVM(ctx context.Context, resourceID string) (string, error)
}

// A Resolver looks up and caches resource descriptions. It implements
// benchsuite.Resolver.
type Resolver struct {
	Accounts AccountDescriber // nil if accounts cannot be described
	VMs      VMDescriber      // nil if VMs cannot be described
	Cache    *Cache           // required
	Timeout  time.Duration    // per lookup; 0 means none
	Logger   *slog.Logger
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// StorageAccount returns a description of the named storage account
// such as "Standard_LRS, StorageV2, eastus".
func (r *Resolver) StorageAccount(ctx context.Context, name string) string {
	return r.Cache.Do(ctx, kindAccount, name, func() string {
		if r.Accounts == nil {
			return r.degrade(ctx, "storage account", name, ErrNoSubscription)
		}
		return r.lookup(ctx, "storage account", name, r.Accounts.DescribeAccount)
	})
}

// VirtualMachine returns a description of the VM with the given
// resource ID such as "Standard_D8s_v3, eastus, accelerated networking
// enabled".
func (r *Resolver) VirtualMachine(ctx context.Context, resourceID string) string {
	return r.Cache.Do(ctx, kindVM, resourceID, func() string {
		if r.VMs == nil {
			return r.degrade(ctx, "VM", resourceID, errors.New("no VM provider configured"))
		}
		return r.lookup(ctx, "VM", resourceID, r.VMs.DescribeVM)
	})
}

func (r *Resolver) lookup(ctx context.Context, what, key string, describe func(context.Context, string) (string, error)) string {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	desc, err := describe(ctx, key)
	if err != nil {
		return r.degrade(ctx, what, key, err)
	}
	if desc == "" {
		return Unknown
	}
	return desc
}

func (r *Resolver) degrade(ctx context.Context, what, key string, err error) string {
	r.logger().WarnContext(ctx, "cannot describe "+what, "key", key, "err", err)
	return Unknown
}
