package pipeline

import (
	"io"
	"os"
	"path/filepath"
)

// outputs stages result files under temporary names next to their targets.
// Nothing is visible at the target paths until commit, so a failing stage
// leaves earlier files (and whatever they would have replaced) untouched.
type outputs struct {
	staged []stagedFile
}

type stagedFile struct {
	tmp, path string
}

// create writes a file for path through write.
func (o *outputs) create(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".antour-*")
	if err != nil {
		return err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	o.staged = append(o.staged, stagedFile{tmp: tmp.Name(), path: path})
	return nil
}

// commit moves every staged file into place. On a rename error the files
// not yet moved are discarded.
func (o *outputs) commit() error {
	for i, f := range o.staged {
		if err := os.Rename(f.tmp, f.path); err != nil {
			o.staged = o.staged[i:]
			o.discard()
			return err
		}
	}
	o.staged = nil
	return nil
}

// discard removes every staged file. It is a no-op after commit.
func (o *outputs) discard() {
	for _, f := range o.staged {
		os.Remove(f.tmp)
	}
	o.staged = nil
}
