package main

import (
	"github.com/spf13/cobra"
)

// syncConfiguration mirrors config.Raw, plus CLI-only knobs (verbosity,
// config file path). It's bound directly to pflag variables in
// bindSyncFlags, the same one-struct-one-init-function shape the teacher
// uses for every subcommand (see createConfiguration in the teacher's
// cmd/mutagen/create.go).
var syncConfiguration struct {
	dst string

	configFile string
	logLevel   string
	verbose    bool

	dryRun bool

	recurse        bool
	copyDirs       bool
	pruneEmptyDirs bool

	resolveConflicts        bool
	useMostRecentModifTimes bool

	existing       bool
	ignoreExisting bool
	update         bool

	sizeOnly            bool
	ignoreTimes         bool
	acceptedTimesDiffMs int64

	preserveTimes bool
	preservePerms bool
	chmod         []string

	preserveOwner bool
	preserveGroup bool
	userMap       []string
	groupMap      []string
	chown         string

	deleteExtraneous bool
	deleteExcluded   bool

	filterRules []string
}

func bindSyncFlags(command *cobra.Command) {
	flags := command.Flags()

	flags.StringVar(&syncConfiguration.dst, "dst", "", "Destination URI (file:<path> or hdfs://<authority>/<path>); omit for a log-only dry run")

	flags.StringVar(&syncConfiguration.configFile, "config", "", "Load options from a YAML configuration file; flags take precedence")
	flags.StringVar(&syncConfiguration.logLevel, "log-level", "info", "Log level (disabled|error|warn|info|debug)")
	flags.BoolVarP(&syncConfiguration.verbose, "verbose", "v", false, "Print a human-readable summary after the run")

	flags.BoolVarP(&syncConfiguration.dryRun, "dry-run", "n", false, "Show what would be done without changing the destination")

	flags.BoolVarP(&syncConfiguration.recurse, "recurse", "r", false, "Recurse into subdirectories")
	flags.BoolVar(&syncConfiguration.copyDirs, "copy-dirs", false, "Copy directories as opaque units without recursing (mutually exclusive with --recurse)")
	flags.BoolVar(&syncConfiguration.pruneEmptyDirs, "prune-empty-dirs", false, "Remove destination directories left empty after a sync")

	flags.BoolVar(&syncConfiguration.resolveConflicts, "resolve-conflicts", false, "Resolve same-name conflicts across sources by keeping the first source's entry")
	flags.BoolVar(&syncConfiguration.useMostRecentModifTimes, "use-most-recent-modif-times", false, "Order conflicting entries by modification time, most recent first")

	flags.BoolVar(&syncConfiguration.existing, "existing", false, "Only update existing destination entries; never create new ones")
	flags.BoolVar(&syncConfiguration.ignoreExisting, "ignore-existing", false, "Only create new destination entries; never update existing ones")
	flags.BoolVar(&syncConfiguration.update, "update", false, "Skip destination entries that are newer than the source")

	flags.BoolVar(&syncConfiguration.sizeOnly, "size-only", false, "Compare only file size, never modification time")
	flags.BoolVar(&syncConfiguration.ignoreTimes, "ignore-times", false, "Always treat entries as different, regardless of size or time")
	flags.Int64Var(&syncConfiguration.acceptedTimesDiffMs, "modify-window", 1000, "Modification time tolerance in milliseconds")

	flags.BoolVar(&syncConfiguration.preserveTimes, "times", false, "Preserve modification times")
	flags.BoolVar(&syncConfiguration.preservePerms, "perms", false, "Preserve permission bits")
	flags.StringSliceVar(&syncConfiguration.chmod, "chmod", nil, "Apply a chmod rule (e.g. \"F0644\" or \"Dugo+rwx\"); may be specified multiple times")

	flags.BoolVar(&syncConfiguration.preserveOwner, "owner", false, "Preserve file owner")
	flags.BoolVar(&syncConfiguration.preserveGroup, "group", false, "Preserve file group")
	flags.StringSliceVar(&syncConfiguration.userMap, "usermap", nil, "Remap an owning user (e.g. \"alice:bob\"); may be specified multiple times")
	flags.StringSliceVar(&syncConfiguration.groupMap, "groupmap", nil, "Remap an owning group (e.g. \"staff:eng\"); may be specified multiple times")
	flags.StringVar(&syncConfiguration.chown, "chown", "", "Map every owner and/or group to the given name (\"user\" or \"user:group\"); applied only with --owner/--group")

	flags.BoolVar(&syncConfiguration.deleteExtraneous, "delete", false, "Delete destination entries with no corresponding source entry")
	flags.BoolVar(&syncConfiguration.deleteExcluded, "delete-excluded", false, "Also delete destination entries excluded by a filter rule (requires --delete)")

	flags.StringSliceVarP(&syncConfiguration.filterRules, "filter", "f", nil, "Add a filter rule (e.g. \"- *.log\"); may be specified multiple times")
}
