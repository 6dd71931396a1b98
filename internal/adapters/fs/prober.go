package fs

import (
	"errors"
	iofs "io/fs"
	"os"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Prober = (*Prober)(nil)

// Prober inspects files on the local disk.
type Prober struct{}

// NewProber creates a new Prober.
func NewProber() *Prober {
	return &Prober{}
}

// Exists reports whether path names an existing regular file.
func (p *Prober) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Stamp returns the modification time of path. Missing files yield the epoch.
func (p *Prober) Stamp(path string) (domain.FileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return domain.FileStamp{Path: path, ModTime: domain.Epoch}, nil
		}
		return domain.FileStamp{}, zerr.With(zerr.Wrap(domain.ErrFilesystem, err.Error()), "path", path)
	}
	return domain.FileStamp{Path: path, ModTime: info.ModTime(), Exists: true}, nil
}
