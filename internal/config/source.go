package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"hiddenunit-sweep/internal/dataset"
)

// ErrNotMounted is returned when a mounted data source has no mount point.
var ErrNotMounted = errors.New("data source not mounted")

// DataRoot returns the directory holding the train and validation files.
func (c *Config) DataRoot() (string, error) {
	switch c.DataSource {
	case SourceMounted:
		info, err := os.Stat(c.MountPoint)
		if err != nil || !info.IsDir() {
			return "", errors.Wrapf(ErrNotMounted, "mount point %q", c.MountPoint)
		}
		if filepath.IsAbs(c.DataDir) {
			return c.DataDir, nil
		}
		return filepath.Join(c.MountPoint, c.DataDir), nil
	default:
		if filepath.IsAbs(c.DataDir) {
			return c.DataDir, nil
		}
		return filepath.Join(c.baseDir, c.DataDir), nil
	}
}

// Source resolves the data files. Empty file names are discovered in the data root.
func (c *Config) Source() (dataset.Source, error) {
	root, err := c.DataRoot()
	if err != nil {
		return dataset.Source{}, err
	}
	if c.TrainFile == "" || c.ValidationFile == "" {
		src, err := dataset.Discover(root)
		if err != nil {
			return dataset.Source{}, err
		}
		if c.TrainFile != "" {
			src.TrainPath = filepath.Join(root, c.TrainFile)
		}
		if c.ValidationFile != "" {
			src.ValidationPath = filepath.Join(root, c.ValidationFile)
		}
		return src, nil
	}
	return dataset.Source{
		TrainPath:      filepath.Join(root, c.TrainFile),
		ValidationPath: filepath.Join(root, c.ValidationFile),
	}, nil
}
