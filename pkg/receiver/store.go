package receiver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	tempPrefix  = ".vcshare-"
	tempSuffix  = ".part"
	unnamedFile = "unnamed"
)

// store is the flat destination directory of a receive group.
type store struct {
	dir string
}

// sanitizeName reduces a sender-supplied name to a single path element.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(path.Base(name))
	name = strings.ReplaceAll(name, "\x00", "")
	switch name {
	case "", ".", "..", "/":
		return unnamedFile
	}
	return name
}

// splitExt splits name into base and extension. A leading dot does not
// start an extension.
func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		return name, ""
	}
	return base, ext
}

// candidateName returns name for attempt 0 and base_<n>ext after that.
func candidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	base, ext := splitExt(name)
	return fmt.Sprintf("%s_%d%s", base, n, ext)
}

// createTemp opens a hidden part file that reconstruction never lists.
func (s store) createTemp() (*os.File, error) {
	p := filepath.Join(s.dir, tempPrefix+uuid.NewString()+tempSuffix)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %w", ErrIOFailure, err)
	}
	return f, nil
}

// commit moves tmp onto the first free name derived from name. The final
// name is claimed with O_EXCL first so concurrent listeners never pick the
// same one.
func (s store) commit(tmp, name string) (string, error) {
	for n := 0; ; n++ {
		p := filepath.Join(s.dir, candidateName(name, n))
		f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: claim %s: %w", ErrIOFailure, p, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(p)
			return "", fmt.Errorf("%w: claim %s: %w", ErrIOFailure, p, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(p)
			return "", fmt.Errorf("%w: rename onto %s: %w", ErrIOFailure, p, err)
		}
		return p, nil
	}
}

// shareFiles lists the regular, non-hidden files of the directory sorted by
// name, skipping the names in exclude.
func (s store) shareFiles(exclude ...string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrIOFailure, s.dir, err)
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		if e != "" {
			skip[filepath.Base(e)] = struct{}{}
		}
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, ok := skip[name]; ok {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	return paths, nil
}

// fileWriter tags write failures as local IO errors so they are not
// mistaken for network faults while copying a payload.
type fileWriter struct {
	f *os.File
}

func (w fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		err = fmt.Errorf("%w: write %s: %w", ErrIOFailure, w.f.Name(), err)
	}
	return n, err
}
