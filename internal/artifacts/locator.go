package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"
)

// Artifact describes one file produced by a pipeline run.
type Artifact struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
}

// Kind returns the classification derived from the artifact's location and name.
func (a Artifact) Kind() Kind {
	return Classify(a.Path)
}

// AccessError reports a directory that exists but could not be enumerated.
type AccessError struct {
	Dir string
	Err error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("list %s: %v", e.Dir, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// FindLatest returns the most recently modified file under root whose
// basename matches the shell-glob pattern. Subdirectories are scanned only
// when recursive is set. A missing root or zero matches yields (nil, nil);
// a root that exists but cannot be listed yields an *AccessError.
//
// Ties on the modification timestamp resolve to the lexicographically
// greatest path so repeated calls against unchanged state pick the same file.
func FindLatest(root, pattern string, recursive bool) (*Artifact, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	candidates, err := gather(root, pattern, recursive)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.ModTime.After(best.ModTime) {
			best = candidate
			continue
		}
		if candidate.ModTime.Equal(best.ModTime) && candidate.Path > best.Path {
			best = candidate
		}
	}
	return &best, nil
}

// List enumerates every file under root recursively, ordered by modification
// time ascending (oldest first). There is no filtering. A missing root yields
// (nil, nil); an unreadable root yields an *AccessError. Unreadable
// subdirectories are skipped so one bad directory cannot hide the rest.
func List(root string) ([]Artifact, error) {
	entries, err := gather(root, "", true)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
	return entries, nil
}

// gather collects files under root. An empty pattern matches everything.
func gather(root, pattern string, recursive bool) ([]Artifact, error) {
	if recursive {
		return gatherWalk(root, pattern)
	}
	return gatherDir(root, pattern)
}

func gatherDir(root, pattern string) ([]Artifact, error) {
	items, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &AccessError{Dir: root, Err: err}
	}

	var result []Artifact
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		if !matches(pattern, item.Name()) {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		result = append(result, Artifact{
			Path:    filepath.Join(root, item.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return result, nil
}

func gatherWalk(root, pattern string) ([]Artifact, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &AccessError{Dir: root, Err: err}
	}

	var result []Artifact
	walkErr := filepath.WalkDir(root, func(entryPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			if entryPath == root {
				return &AccessError{Dir: root, Err: err}
			}
			// One unreadable subdirectory must not abort the rest.
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !matches(pattern, entry.Name()) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		result = append(result, Artifact{
			Path:    entryPath,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
		return nil
	})
	if walkErr != nil {
		var accessErr *AccessError
		if errors.As(walkErr, &accessErr) {
			return nil, accessErr
		}
		return nil, walkErr
	}
	return result, nil
}

func matches(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
