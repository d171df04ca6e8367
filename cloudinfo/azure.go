// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cloudinfo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

var (
	accountIDRE = regexp.MustCompile(`^/subscriptions/.+/resourceGroups/(.+)/providers/Microsoft\.Storage/storageAccounts/.+$`)
	vmIDRE      = regexp.MustCompile(`^/subscriptions/(.+)/resourceGroups/(.+)/providers/Microsoft\.Compute/virtualMachines/(.+)$`)
	nicIDRE     = regexp.MustCompile(`^/subscriptions/(.+)/resourceGroups/(.+)/providers/Microsoft\.Network/networkInterfaces/(.+)$`)
)

// Azure describes resources through Azure Resource Manager.
type Azure struct {
	// SubscriptionID is the subscription storage accounts are
	// searched in. VMs are looked up in the subscription named by
	// their resource ID.
	SubscriptionID string
	Credential     azcore.TokenCredential
	Options        *arm.ClientOptions
}

// DescribeAccount returns "<sku>, <kind>, <location>" for the named
// storage account.
func (a *Azure) DescribeAccount(ctx context.Context, name string) (string, error) {
	acct, err := a.findAccount(ctx, name)
	if err != nil {
		return "", err
	}
	var sku string
	if acct.SKU != nil && acct.SKU.Name != nil {
		sku = string(*acct.SKU.Name)
	}
	var kind string
	if acct.Kind != nil {
		kind = string(*acct.Kind)
	}
	return fmt.Sprintf("%s, %s, %s", sku, kind, deref(acct.Location)), nil
}

// AccountKey returns the first access key of the named storage account.
func (a *Azure) AccountKey(ctx context.Context, name string) (string, error) {
	acct, err := a.findAccount(ctx, name)
	if err != nil {
		return "", err
	}
	m := accountIDRE.FindStringSubmatch(deref(acct.ID))
	if m == nil {
		return "", fmt.Errorf("storage account %s: cannot parse resource ID %q", name, deref(acct.ID))
	}
	client, err := armstorage.NewAccountsClient(a.SubscriptionID, a.Credential, a.Options)
	if err != nil {
		return "", err
	}
	resp, err := client.ListKeys(ctx, m[1], name, nil)
	if err != nil {
		return "", fmt.Errorf("storage account %s: listing keys: %w", name, err)
	}
	if len(resp.Keys) == 0 || resp.Keys[0].Value == nil {
		return "", fmt.Errorf("storage account %s has no keys", name)
	}
	return *resp.Keys[0].Value, nil
}

// findAccount searches the subscription for the named storage account.
func (a *Azure) findAccount(ctx context.Context, name string) (*armstorage.Account, error) {
	if a.SubscriptionID == "" {
		return nil, ErrNoSubscription
	}
	client, err := armstorage.NewAccountsClient(a.SubscriptionID, a.Credential, a.Options)
	if err != nil {
		return nil, err
	}
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing storage accounts: %w", err)
		}
		for _, acct := range page.Value {
			if acct != nil && deref(acct.Name) == name {
				return acct, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s in subscription %s", ErrAccountNotFound, name, a.SubscriptionID)
}

// DescribeVM returns "<size>, <location>, accelerated networking
// <status>" for the VM with the given resource ID. The status is
// "status unknown" unless the VM has exactly one network interface
// that can be read.
func (a *Azure) DescribeVM(ctx context.Context, resourceID string) (string, error) {
	m := vmIDRE.FindStringSubmatch(resourceID)
	if m == nil {
		return "", fmt.Errorf("cannot parse VM resource ID %q", resourceID)
	}
	sub, group, name := m[1], m[2], m[3]
	client, err := armcompute.NewVirtualMachinesClient(sub, a.Credential, a.Options)
	if err != nil {
		return "", err
	}
	resp, err := client.Get(ctx, group, name, nil)
	if err != nil {
		return "", fmt.Errorf("getting VM %s: %w", name, err)
	}
	vm := resp.VirtualMachine

	var size string
	nic := "status unknown"
	if p := vm.Properties; p != nil {
		if p.HardwareProfile != nil && p.HardwareProfile.VMSize != nil {
			size = string(*p.HardwareProfile.VMSize)
		}
		if p.NetworkProfile != nil && len(p.NetworkProfile.NetworkInterfaces) == 1 && p.NetworkProfile.NetworkInterfaces[0] != nil {
			if status, err := a.acceleratedNetworking(ctx, deref(p.NetworkProfile.NetworkInterfaces[0].ID)); err == nil {
				nic = status
			}
		}
	}
	return fmt.Sprintf("%s, %s, accelerated networking %s", size, deref(vm.Location), nic), nil
}

func (a *Azure) acceleratedNetworking(ctx context.Context, nicID string) (string, error) {
	m := nicIDRE.FindStringSubmatch(nicID)
	if m == nil {
		return "", errors.New("cannot parse network interface ID")
	}
	client, err := armnetwork.NewInterfacesClient(m[1], a.Credential, a.Options)
	if err != nil {
		return "", err
	}
	resp, err := client.Get(ctx, m[2], m[3], nil)
	if err != nil {
		return "", err
	}
	if p := resp.Properties; p != nil && p.EnableAcceleratedNetworking != nil && *p.EnableAcceleratedNetworking {
		return "enabled", nil
	}
	return "not enabled", nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
