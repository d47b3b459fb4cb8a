package sync

import (
	"context"

	"github.com/hdfssync/hrsync/pkg/config"
	"github.com/hdfssync/hrsync/pkg/filesystem"
	"github.com/hdfssync/hrsync/pkg/filesystem/factory"
	"github.com/hdfssync/hrsync/pkg/filter"
	"github.com/hdfssync/hrsync/pkg/logging"
	"github.com/hdfssync/hrsync/pkg/metadata"
)

// Driver is the Engine Driver (spec §4.5): the top-level entry point that
// seeds the Level Walker with the configured roots and returns once the
// recursion unwinds.
type Driver struct {
	cfg *config.Config
	log *logging.Logger
}

// New constructs a Driver from a validated config.Config.
func New(cfg *config.Config, log *logging.Logger) *Driver {
	if log == nil {
		log = logging.NewLogger(logging.LevelInfo, nil)
	}
	return &Driver{cfg: cfg, log: log.Sublogger("sync")}
}

// Stats summarizes one completed run.
type Stats struct {
	// BytesTransferred is the cumulative size of every file actually copied
	// or updated (dry-run and log-only actions contribute nothing).
	BytesTransferred int64
}

// Run executes one synchronization pass.
func (d *Driver) Run(ctx context.Context) (*Stats, error) {
	f, err := filter.Compile(d.cfg.FilterRules)
	if err != nil {
		return nil, err
	}

	fsCache := map[string]filesystem.FS{}
	resolve := func(u *filesystem.URI) (filesystem.FS, error) {
		key := u.Scheme.String() + "://" + u.Authority
		if fs, ok := fsCache[key]; ok {
			return fs, nil
		}
		fs, err := factory.New(u.Scheme, u.Authority)
		if err != nil {
			return nil, err
		}
		fsCache[key] = fs
		return fs, nil
	}

	var dstFS filesystem.FS
	destRoot := ""
	if d.cfg.Dst != nil {
		dstFS, err = resolve(d.cfg.Dst)
		if err != nil {
			return nil, err
		}
		destRoot = d.cfg.Dst.Path
	}

	roots := make([]sourceRoot, 0, len(d.cfg.Sources))
	for _, s := range d.cfg.Sources {
		fs, err := resolve(s.URI)
		if err != nil {
			return nil, err
		}
		roots = append(roots, sourceRoot{fs: fs, path: s.URI.Path, basePath: ""})
	}

	processor := NewProcessor(ProcessorOptions{
		DryRun:              d.cfg.DryRun,
		Recurse:             d.cfg.Recurse,
		CopyDirs:            d.cfg.CopyDirs,
		Existing:            d.cfg.Existing,
		IgnoreExisting:      d.cfg.IgnoreExisting,
		Update:              d.cfg.Update,
		SizeOnly:            d.cfg.SizeOnly,
		IgnoreTimes:         d.cfg.IgnoreTimes,
		AcceptedTimesDiffMs: d.cfg.AcceptedTimesDiffMs,
	}, d.log)

	planner := metadata.New(metadata.Options{
		DryRun:              d.cfg.DryRun,
		PreserveTimes:       d.cfg.PreserveTimes,
		PreservePerms:       d.cfg.PreservePerms,
		PreserveOwner:       d.cfg.PreserveOwner,
		PreserveGroup:       d.cfg.PreserveGroup,
		AcceptedTimesDiffMs: d.cfg.AcceptedTimesDiffMs,
		Chmod:               d.cfg.Chmod,
		UserMap:             d.cfg.UserMap,
		GroupMap:            d.cfg.GroupMap,
	}, d.log)

	walker := NewWalker(WalkerOptions{
		DryRun:                  d.cfg.DryRun,
		Recurse:                 d.cfg.Recurse,
		ResolveConflicts:        d.cfg.ResolveConflicts,
		UseMostRecentModifTimes: d.cfg.UseMostRecentModifTimes,
		PruneEmptyDirs:          d.cfg.PruneEmptyDirs,
		DeleteExtraneous:        d.cfg.DeleteExtraneous,
		DeleteExcluded:          d.cfg.DeleteExcluded,
	}, f, processor, planner, d.log, dstFS, destRoot)

	if err := walker.Walk(ctx, roots, destRoot); err != nil {
		return nil, err
	}
	return &Stats{BytesTransferred: processor.BytesTransferred()}, nil
}
