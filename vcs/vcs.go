// Package vcs keeps the statement archive under version control, so every
// downloaded statement is a commit in the downloads directory's git history.
package vcs

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/openfetch/bankdl/pipe"
	"github.com/pkg/errors"
	"gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
)

// Repository is a git repository with thread-safe commit operations
type Repository interface {
	// CommitFiles commits the files at 'paths' with 'message'
	CommitFiles(message string, paths ...string) error
}

// Open ensures a git repo exists at 'path' and returns it
func Open(path string) (Repository, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: false,
	})
	if err == git.ErrRepositoryNotExists {
		repo, err = git.PlainInit(path, false)
	}
	return &syncRepo{repo: repo}, err
}

type syncRepo struct {
	repo *git.Repository
	mu   sync.Mutex
}

func archiveAuthor() *object.Signature {
	return &object.Signature{
		Name: "bankdl",
		When: time.Now(),
	}
}

// CommitFiles resets the index, then adds and commits the files at 'paths'.
// Committing an unchanged set of files is a no-op, not an error.
func (s *syncRepo) CommitFiles(message string, paths ...string) error {
	if len(paths) == 0 {
		return errors.New("No files to commit")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	var tree *git.Worktree
	var repoStatus git.Status
	var rootPath string
	return pipe.OpFuncs{
		func() error {
			tree, err = s.repo.Worktree()
			return err
		},
		func() error {
			_, headErr := s.repo.Head()
			if headErr != nil && headErr != plumbing.ErrReferenceNotFound {
				return headErr
			}
			if headErr != plumbing.ErrReferenceNotFound {
				// unstage everything so only 'paths' lands in this commit
				return tree.Reset(&git.ResetOptions{})
			}
			return nil
		},
		func() error {
			rootPath, err = filepath.Abs(tree.Filesystem.Root())
			return err
		},
		func() error {
			var ops pipe.OpFuncs
			for i := range paths {
				path := &paths[i]
				ops = append(ops,
					func() error {
						*path, err = filepath.Abs(*path)
						return err
					},
					func() error {
						*path, err = filepath.Rel(rootPath, *path)
						return err
					},
					func() error {
						_, err := tree.Add(*path)
						return errors.Wrapf(err, "Failed to add %s to the git index", *path)
					},
				)
			}
			return ops.Do()
		},
		func() error {
			repoStatus, err = tree.Status()
			return err
		},
		func() error {
			shouldCommit := false
			for _, path := range paths {
				status, ok := repoStatus[path]
				if ok && status.Staging != git.Unmodified {
					shouldCommit = true
					break
				}
			}
			if !shouldCommit {
				return nil
			}
			_, err = tree.Commit(message, &git.CommitOptions{
				Author: archiveAuthor(),
			})
			return err
		},
	}.Do()
}
