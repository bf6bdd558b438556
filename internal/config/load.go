package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads the configuration at path from fsys. A directory is taken to
// hold a config.yaml. A missing file yields the defaults; fields absent from
// the file keep their default values.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	if isDir, err := afero.IsDir(fsys, path); err == nil && isDir {
		path = filepath.Join(path, ConfigurationName)
	}

	out := Default()

	contents, err := afero.ReadFile(fsys, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return out, nil
	case err != nil:
		return nil, err
	}

	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	return out, nil
}
