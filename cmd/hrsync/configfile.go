package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape accepted by --config. Every field is optional;
// fields a flag explicitly sets on the command line take precedence over the
// file (see buildRaw).
type fileConfig struct {
	Sources []string `yaml:"sources"`
	Dst     string   `yaml:"dst"`

	DryRun bool `yaml:"dryRun"`

	Recurse        bool `yaml:"recurse"`
	CopyDirs       bool `yaml:"copyDirs"`
	PruneEmptyDirs bool `yaml:"pruneEmptyDirs"`

	ResolveConflicts        bool `yaml:"resolveConflicts"`
	UseMostRecentModifTimes bool `yaml:"useMostRecentModifTimes"`

	Existing       bool `yaml:"existing"`
	IgnoreExisting bool `yaml:"ignoreExisting"`
	Update         bool `yaml:"update"`

	SizeOnly            bool  `yaml:"sizeOnly"`
	IgnoreTimes         bool  `yaml:"ignoreTimes"`
	AcceptedTimesDiffMs int64 `yaml:"modifyWindow"`

	PreserveTimes bool     `yaml:"times"`
	PreservePerms bool     `yaml:"perms"`
	Chmod         []string `yaml:"chmod"`

	PreserveOwner bool     `yaml:"owner"`
	PreserveGroup bool     `yaml:"group"`
	UserMap       []string `yaml:"usermap"`
	GroupMap      []string `yaml:"groupmap"`
	Chown         string   `yaml:"chown"`

	DeleteExtraneous bool `yaml:"delete"`
	DeleteExcluded   bool `yaml:"deleteExcluded"`

	FilterRules []string `yaml:"filter"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read configuration file %s", path)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrapf(err, "unable to parse configuration file %s", path)
	}
	return &fc, nil
}
