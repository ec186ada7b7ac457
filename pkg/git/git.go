// Package git provides repository discovery and the file sets hooks run
// against: the staged change set and the full tracked set.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// Repository wraps one opened Git repository.
type Repository struct {
	repo *gogit.Repository
	Root string
}

// NewRepository opens the repository containing path (or the working
// directory when path is empty).
func NewRepository(path string) (*Repository, error) {
	root, err := FindRoot(path)
	if err != nil {
		return nil, err
	}

	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{Root: root, repo: repo}, nil
}

// FindRoot walks upward until it finds the repository root.
func FindRoot(path string) (string, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		gitDir := filepath.Join(path, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			if info.IsDir() {
				return path, nil
			}
			// Worktrees keep a .git file pointing at the real git dir.
			if content, err := os.ReadFile(gitDir); err == nil { // #nosec G304 -- git metadata
				if strings.HasPrefix(strings.TrimSpace(string(content)), "gitdir: ") {
					return path, nil
				}
			}
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", errors.New("not in a git repository")
		}
		path = parent
	}
}

// ChangedFiles returns the staged change set: additions, modifications, and
// rename destinations, minus deletions, sorted in repository order. Symlinks
// are reported as-is and never followed.
func (r *Repository) ChangedFiles() ([]string, error) {
	if r.repo == nil {
		return nil, errors.New("repository is not initialized")
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var files []string
	for file, fileStatus := range status {
		switch fileStatus.Staging {
		case gogit.Added, gogit.Modified, gogit.Renamed, gogit.Copied:
			files = append(files, file)
		}
	}

	sort.Strings(files)
	return files, nil
}

// AllFiles returns every tracked file plus staged additions, sorted in
// repository order. Used by --all-files.
func (r *Repository) AllFiles() ([]string, error) {
	if r.repo == nil {
		return nil, errors.New("repository is not initialized")
	}

	fileSet := make(map[string]bool)

	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	for file, fileStatus := range status {
		if fileStatus.Staging == gogit.Deleted || fileStatus.Worktree == gogit.Deleted {
			continue
		}
		if fileStatus.Staging == gogit.Untracked {
			continue
		}
		fileSet[file] = true
	}

	r.addHeadFiles(fileSet)

	files := make([]string, 0, len(fileSet))
	for file := range fileSet {
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

// addHeadFiles merges the HEAD tree into the set. Best effort: an empty
// repository has no HEAD and that is not an error.
func (r *Repository) addHeadFiles(fileSet map[string]bool) {
	head, err := r.repo.Head()
	if err != nil {
		return
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return
	}

	tree, err := commit.Tree()
	if err != nil {
		return
	}

	files := tree.Files()
	defer files.Close()
	for {
		f, err := files.Next()
		if err != nil {
			return
		}
		fileSet[f.Name] = true
	}
}

// HooksDir returns the directory Git consults for hook scripts.
func (r *Repository) HooksDir() string {
	return filepath.Join(r.Root, ".git", "hooks")
}
