package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hdfssync/hrsync/pkg/config"
	"github.com/hdfssync/hrsync/pkg/logging"
	"github.com/hdfssync/hrsync/pkg/sync"
)

// buildRaw assembles a config.Raw from the bound flags, positional source
// arguments, and (if --config was given) a YAML file, with flags always
// winning over the file for any field they explicitly set.
func buildRaw(command *cobra.Command, arguments []string) (config.Raw, error) {
	raw := config.Raw{
		Sources:                 arguments,
		Dst:                     syncConfiguration.dst,
		DryRun:                  syncConfiguration.dryRun,
		Recurse:                 syncConfiguration.recurse,
		CopyDirs:                syncConfiguration.copyDirs,
		PruneEmptyDirs:          syncConfiguration.pruneEmptyDirs,
		ResolveConflicts:        syncConfiguration.resolveConflicts,
		UseMostRecentModifTimes: syncConfiguration.useMostRecentModifTimes,
		Existing:                syncConfiguration.existing,
		IgnoreExisting:          syncConfiguration.ignoreExisting,
		Update:                  syncConfiguration.update,
		SizeOnly:                syncConfiguration.sizeOnly,
		IgnoreTimes:             syncConfiguration.ignoreTimes,
		AcceptedTimesDiffMs:     syncConfiguration.acceptedTimesDiffMs,
		PreserveTimes:           syncConfiguration.preserveTimes,
		PreservePerms:           syncConfiguration.preservePerms,
		ChmodCommands:           syncConfiguration.chmod,
		PreserveOwner:           syncConfiguration.preserveOwner,
		PreserveGroup:           syncConfiguration.preserveGroup,
		UserMap:                 syncConfiguration.userMap,
		GroupMap:                syncConfiguration.groupMap,
		Chown:                   syncConfiguration.chown,
		DeleteExtraneous:        syncConfiguration.deleteExtraneous,
		DeleteExcluded:          syncConfiguration.deleteExcluded,
		FilterRules:             syncConfiguration.filterRules,
	}

	if syncConfiguration.configFile == "" {
		return raw, nil
	}

	fc, err := loadFileConfig(syncConfiguration.configFile)
	if err != nil {
		return config.Raw{}, err
	}

	flags := command.Flags()
	if len(raw.Sources) == 0 {
		raw.Sources = fc.Sources
	}
	if !flags.Changed("dst") {
		raw.Dst = fc.Dst
	}
	if !flags.Changed("dry-run") {
		raw.DryRun = fc.DryRun
	}
	if !flags.Changed("recurse") {
		raw.Recurse = fc.Recurse
	}
	if !flags.Changed("copy-dirs") {
		raw.CopyDirs = fc.CopyDirs
	}
	if !flags.Changed("prune-empty-dirs") {
		raw.PruneEmptyDirs = fc.PruneEmptyDirs
	}
	if !flags.Changed("resolve-conflicts") {
		raw.ResolveConflicts = fc.ResolveConflicts
	}
	if !flags.Changed("use-most-recent-modif-times") {
		raw.UseMostRecentModifTimes = fc.UseMostRecentModifTimes
	}
	if !flags.Changed("existing") {
		raw.Existing = fc.Existing
	}
	if !flags.Changed("ignore-existing") {
		raw.IgnoreExisting = fc.IgnoreExisting
	}
	if !flags.Changed("update") {
		raw.Update = fc.Update
	}
	if !flags.Changed("size-only") {
		raw.SizeOnly = fc.SizeOnly
	}
	if !flags.Changed("ignore-times") {
		raw.IgnoreTimes = fc.IgnoreTimes
	}
	if !flags.Changed("modify-window") {
		raw.AcceptedTimesDiffMs = fc.AcceptedTimesDiffMs
	}
	if !flags.Changed("times") {
		raw.PreserveTimes = fc.PreserveTimes
	}
	if !flags.Changed("perms") {
		raw.PreservePerms = fc.PreservePerms
	}
	if !flags.Changed("chmod") {
		raw.ChmodCommands = fc.Chmod
	}
	if !flags.Changed("owner") {
		raw.PreserveOwner = fc.PreserveOwner
	}
	if !flags.Changed("group") {
		raw.PreserveGroup = fc.PreserveGroup
	}
	if !flags.Changed("usermap") {
		raw.UserMap = fc.UserMap
	}
	if !flags.Changed("groupmap") {
		raw.GroupMap = fc.GroupMap
	}
	if !flags.Changed("chown") {
		raw.Chown = fc.Chown
	}
	if !flags.Changed("delete") {
		raw.DeleteExtraneous = fc.DeleteExtraneous
	}
	if !flags.Changed("delete-excluded") {
		raw.DeleteExcluded = fc.DeleteExcluded
	}
	if !flags.Changed("filter") {
		raw.FilterRules = fc.FilterRules
	}

	return raw, nil
}

func runSync(command *cobra.Command, arguments []string) error {
	raw, err := buildRaw(command, arguments)
	if err != nil {
		return err
	}

	cfg, err := config.Build(raw)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	level, ok := logging.NameToLevel(syncConfiguration.logLevel)
	if !ok {
		return errors.Errorf("invalid log level: %s", syncConfiguration.logLevel)
	}
	log := logging.NewLogger(level, nil)

	if cfg.Dst == nil {
		warning("no destination specified; running in log-only mode")
	}

	driver := sync.New(cfg, log)

	start := time.Now()
	stats, err := driver.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if syncConfiguration.verbose {
		fmt.Fprintf(os.Stdout, "Transferred %s in %s\n",
			humanize.Bytes(uint64(stats.BytesTransferred)), elapsed.Round(time.Millisecond))
	}

	return nil
}
