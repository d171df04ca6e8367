// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package release

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// DefaultRepo is the repository the SDK is released from.
const DefaultRepo = "Azure/azure-sdk-for-cpp"

// GitHub lists the releases of a GitHub repository.
type GitHub struct {
	Client      *github.Client
	Owner, Repo string
}

// NewGitHub returns a GitHub source for repo, given as "owner/name".
// If token is not empty, requests are authenticated with it, which
// raises GitHub's rate limit.
func NewGitHub(ctx context.Context, repo, token string) (*GitHub, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("bad repository %q, want owner/name", repo)
	}
	var hc *http.Client
	if token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	return &GitHub{Client: github.NewClient(hc), Owner: owner, Repo: name}, nil
}

// ListReleases returns every release of the repository.
func (g *GitHub) ListReleases(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	opts := &github.ListOptions{PerPage: 100}
	for {
		rels, resp, err := g.Client.Repositories.ListReleases(ctx, g.Owner, g.Repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing releases of %s/%s: %w", g.Owner, g.Repo, err)
		}
		for _, r := range rels {
			if r.PublishedAt == nil {
				// Drafts have no publication date.
				continue
			}
			tags = append(tags, Tag{Name: r.GetTagName(), Published: r.GetPublishedAt().Time})
		}
		if resp.NextPage == 0 {
			return tags, nil
		}
		opts.Page = resp.NextPage
	}
}
