// Package propagate commits a change in a nested repository and records the
// updated sub-repository pointer in every ancestor up to the root.
package propagate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/hierarchy"
	"github.com/conn-castle/datahandle/internal/messages"
)

// Committer stages and commits inside a repository identified by its path.
type Committer interface {
	Add(ctx context.Context, repoPath string, path string) error
	Commit(ctx context.Context, repoPath string, message string) error
}

// Link is one repository in a propagation chain.
type Link struct {
	// Name is the repository's hierarchical name; empty for the root.
	Name string
	// RepoPath is the absolute location of the repository.
	RepoPath string
	// StagePath is the child sub-repository path to stage before committing,
	// relative to RepoPath. Empty for the first link, whose change is staged
	// by the operation that produced it.
	StagePath string
}

// Chain lists repositories deepest first; the root is always last.
type Chain []Link

// Build returns the chain from the repository named target (empty for the
// root) up through every registered ancestor to the root at rootPath.
func Build(rootPath string, index gitrepo.Index, target string) Chain {
	names := []string{}
	if target != "" {
		names = append(names, target)
		names = append(names, hierarchy.Ancestors(target, index)...)
	}
	names = append(names, "")

	chain := make(Chain, 0, len(names))
	for i, name := range names {
		link := Link{Name: name, RepoPath: repoPath(rootPath, index, name)}
		if i > 0 {
			link.StagePath = hierarchy.SubPath(index, names[i-1], name)
		}
		chain = append(chain, link)
	}
	return chain
}

func repoPath(rootPath string, index gitrepo.Index, name string) string {
	return filepath.Join(rootPath, filepath.FromSlash(hierarchy.EntryPath(index, name)))
}

// Run commits message in every link in order. The first link is committed
// as-is; each later link stages its child's path first, so a parent is never
// committed before the child pointer it records.
func Run(ctx context.Context, c Committer, chain Chain, message string) error {
	for i, link := range chain {
		if i > 0 {
			log.Debug().Str("repo", link.RepoPath).Str("path", link.StagePath).Msg("staging sub-repository pointer")
			if err := c.Add(ctx, link.RepoPath, link.StagePath); err != nil {
				return fmt.Errorf(messages.PropagateStageFailedFmt, link.StagePath, link.RepoPath, err)
			}
		}
		if err := c.Commit(ctx, link.RepoPath, message); err != nil {
			return fmt.Errorf(messages.PropagateCommitFailedFmt, link.RepoPath, err)
		}
	}
	return nil
}

// CommitMessage renders the install commit message for name and the
// sub-handles materialized with it.
func CommitMessage(name string, subhandles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, messages.CommitInstalledHandleFmt, name)
	for _, sub := range subhandles {
		fmt.Fprintf(&b, messages.CommitInstalledSubhandleFmt, sub)
	}
	return b.String()
}
