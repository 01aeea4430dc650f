// Package config loads the optional viper.toml project file. The schema
// is deliberately tiny: additional import search paths and a default
// output path are the only knobs the front end consults, so those two
// fields are the whole of it.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"viper/common"
	"viper/diag"
)

// tomlConfig is the raw TOML shape before validation.
type tomlConfig struct {
	Project *tomlProject `toml:"project"`
}

type tomlProject struct {
	SearchPaths []string `toml:"search-paths,omitempty"`
	OutputPath  string   `toml:"output,omitempty"`
}

// Config is the validated, in-memory form of viper.toml.
type Config struct {
	// SearchPaths are additional directories the import resolver
	// consults after the importing file's own directory.
	SearchPaths []string

	// OutputPath overrides the default "<input-file>.ll" destination. The
	// written file is textual LLVM IR; no object file is produced.
	// Empty means unset.
	OutputPath string
}

// Load reads viper.toml from dir, if present. A missing file is not an
// error -- the project file is optional -- so it returns a zero-value
// Config. A malformed file is reported through diag and returns a
// zero-value Config as well, since config errors predate any
// driver.Context.
func Load(dir string) *Config {
	path := filepath.Join(dir, common.ConfigFileName)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}
		}
		diag.ReportConfigError("Project", fmt.Sprintf("unable to open %s: %s", path, err.Error()))
		return &Config{}
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		diag.ReportConfigError("Project", fmt.Sprintf("unable to read %s: %s", path, err.Error()))
		return &Config{}
	}

	tc := &tomlConfig{}
	if err := toml.Unmarshal(buff, tc); err != nil {
		diag.ReportConfigError("Project", fmt.Sprintf("malformed %s: %s", path, err.Error()))
		return &Config{}
	}

	cfg := &Config{}
	if tc.Project != nil {
		cfg.SearchPaths = make([]string, len(tc.Project.SearchPaths))
		for i, p := range tc.Project.SearchPaths {
			if filepath.IsAbs(p) {
				cfg.SearchPaths[i] = p
			} else {
				cfg.SearchPaths[i] = filepath.Join(dir, p)
			}
		}
		cfg.OutputPath = tc.Project.OutputPath
	}

	return cfg
}
