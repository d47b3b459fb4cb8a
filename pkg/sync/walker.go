package sync

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/hdfssync/hrsync/pkg/filesystem"
	"github.com/hdfssync/hrsync/pkg/filter"
	"github.com/hdfssync/hrsync/pkg/logging"
	"github.com/hdfssync/hrsync/pkg/metadata"
)

// sourceRoot is one (path, BasePath) pair driving a Level Walker invocation
// (spec §4.4). An empty BasePath marks a tree root: its path is expanded
// with Glob and each match's BasePath is derived from its parent directory.
// A non-empty BasePath marks a plain directory to List non-recursively,
// carrying the BasePath forward unchanged to every child.
type sourceRoot struct {
	fs       filesystem.FS
	path     string
	basePath string
}

// sourceEntry is one listed or globbed source, paired with the BasePath and
// filesystem it came from.
type sourceEntry struct {
	handle   *filesystem.FileHandle
	basePath string
	fs       filesystem.FS
}

// WalkerOptions carries the subset of config.Config the Level Walker needs
// directly (beyond what it delegates to the Processor/Planner/Filter).
type WalkerOptions struct {
	DryRun                  bool
	Recurse                 bool
	ResolveConflicts        bool
	UseMostRecentModifTimes bool
	PruneEmptyDirs          bool
	DeleteExtraneous        bool
	DeleteExcluded          bool
}

// Walker is the Level Walker (spec §4.4): for a single directory level, it
// lists sources and destination, groups by name, merges conflicts, drives
// deletion of extraneous entries, and recurses.
type Walker struct {
	opts      WalkerOptions
	filter    *filter.Filter
	processor *Processor
	planner   *metadata.Planner
	log       *logging.Logger
	dstFS     filesystem.FS
	// destRoot anchors destination-side filter evaluation (the deletion
	// pass); it is the top-level destination path for the whole run and
	// does not change as the walker recurses into subdirectories.
	destRoot string
}

// NewWalker constructs a Level Walker.
func NewWalker(opts WalkerOptions, f *filter.Filter, p *Processor, pl *metadata.Planner, log *logging.Logger, dstFS filesystem.FS, destRoot string) *Walker {
	return &Walker{opts: opts, filter: f, processor: p, planner: pl, log: log, dstFS: dstFS, destRoot: destRoot}
}

// listSourceRoot performs step 1 of spec §4.4 for a single source root,
// suppressing listing errors on the source side (spec §4.4 failure
// semantics: treated as empty, the run continues).
func (w *Walker) listSourceRoot(sr sourceRoot) []sourceEntry {
	if sr.basePath == "" {
		handles, err := sr.fs.Glob(sr.path)
		if err != nil {
			w.log.Warnf("ignoring unreadable source root %s: %v", sr.path, err)
			return nil
		}
		entries := make([]sourceEntry, len(handles))
		for i, h := range handles {
			entries[i] = sourceEntry{handle: h, basePath: filesystem.Dir(h.Path), fs: sr.fs}
		}
		return entries
	}

	handles, err := sr.fs.List(sr.path)
	if err != nil {
		w.log.Warnf("ignoring unreadable source directory %s: %v", sr.path, err)
		return nil
	}
	entries := make([]sourceEntry, len(handles))
	for i, h := range handles {
		entries[i] = sourceEntry{handle: h, basePath: sr.basePath, fs: sr.fs}
	}
	return entries
}

// Walk drives one directory level: sources is the ordered list of source
// roots feeding this level (source-parameter order), parentDst is the
// destination directory path for this level ("" if there is no destination
// at all, i.e. log-only mode).
func (w *Walker) Walk(ctx context.Context, sources []sourceRoot, parentDst string) error {
	// Step 1 — source listing, preserving source-parameter order.
	var all []sourceEntry
	for _, sr := range sources {
		all = append(all, w.listSourceRoot(sr)...)
	}

	// Step 2 — grouping by name, preserving first-seen insertion order.
	grouped := make(map[string][]sourceEntry)
	var names []string
	for _, e := range all {
		name := e.handle.Base()
		if _, ok := grouped[name]; !ok {
			names = append(names, name)
		}
		grouped[name] = append(grouped[name], e)
	}

	// Step 3 — conflict ordering.
	if w.opts.UseMostRecentModifTimes {
		for _, name := range names {
			list := grouped[name]
			sort.SliceStable(list, func(i, j int) bool {
				return list[i].handle.ModTimeMs > list[j].handle.ModTimeMs
			})
		}
	}

	// Step 4 — destination listing.
	dstChildren := make(map[string]*filesystem.FileHandle)
	if parentDst != "" && w.dstFS != nil {
		exists, err := w.dstFS.Exists(parentDst)
		if err != nil {
			return errors.Wrapf(err, "unable to check existence of destination %s", parentDst)
		}
		if exists {
			children, err := w.dstFS.List(parentDst)
			if err != nil {
				return errors.Wrapf(err, "unable to list destination %s", parentDst)
			}
			for _, c := range children {
				dstChildren[c.Base()] = c
			}
		}
	}

	// Step 5 — deletion pass.
	if w.opts.DeleteExtraneous && parentDst != "" {
		if err := w.deleteExtraneous(dstChildren, grouped, parentDst); err != nil {
			return err
		}
	}

	// Step 6 — per-name processing, in first-seen order.
	for _, name := range names {
		if err := w.processName(ctx, name, grouped[name], parentDst, dstChildren[name]); err != nil {
			return err
		}
	}

	return nil
}

func (w *Walker) deleteExtraneous(dstChildren map[string]*filesystem.FileHandle, grouped map[string][]sourceEntry, parentDst string) error {
	for name, handle := range dstChildren {
		if _, present := grouped[name]; present {
			continue
		}
		keep, matchedExclude := w.filter.Select(handle.Path, w.destRoot, handle.IsDir)
		if !keep && matchedExclude && !w.opts.DeleteExcluded {
			w.log.Action("EXCLUDE_DST", false, false, handle.Path)
			continue
		}
		if w.opts.DryRun {
			w.log.Action("DELETE_DST", true, false, handle.Path)
			continue
		}
		if err := w.dstFS.Delete(handle.Path, true); err != nil {
			return errors.Wrapf(err, "unable to delete extraneous destination entry %s", handle.Path)
		}
		w.log.Action("DELETE_DST", false, false, handle.Path)
	}
	_ = parentDst
	return nil
}

// processName implements step 6 of spec §4.4 for a single name.
func (w *Walker) processName(ctx context.Context, name string, candidates []sourceEntry, parentDst string, existing *filesystem.FileHandle) error {
	// Step 6a — filter.
	var kept []sourceEntry
	for _, c := range candidates {
		keep, _ := w.filter.Select(c.handle.Path, c.basePath, c.handle.IsDir)
		if keep {
			kept = append(kept, c)
		} else {
			w.log.Action("EXCLUDE_SRC", false, false, c.handle.Path)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	// Step 6b.
	var target string
	if parentDst != "" {
		target = filesystem.Join(parentDst, name)
	}

	// Step 6c — conflict resolution.
	allDirs := true
	for _, c := range kept {
		if !c.handle.IsDir {
			allDirs = false
			break
		}
	}
	var mergeSet []sourceEntry
	var representative sourceEntry
	switch {
	case allDirs:
		mergeSet = kept
		representative = kept[0]
	case len(kept) == 1:
		mergeSet = kept
		representative = kept[0]
	case w.opts.ResolveConflicts:
		mergeSet = []sourceEntry{kept[0]}
		representative = kept[0]
	default:
		return &ConflictError{Name: name, Slot: target, Count: len(kept)}
	}

	// Step 6e — Entry Processor.
	result, err := w.processor.Process(ctx, w.dstFS, representative.fs, representative.handle, target, existing)
	if err != nil {
		return err
	}

	// Step 6f — recursion.
	if representative.handle.IsDir && w.opts.Recurse && !result.NoTarget {
		childDst := target
		effective := result.EffectiveHandle(true)
		if effective != nil {
			childDst = effective.Path
		}
		var childSources []sourceRoot
		if allDirs {
			for _, c := range mergeSet {
				childSources = append(childSources, sourceRoot{fs: c.fs, path: c.handle.Path, basePath: c.basePath})
			}
		} else {
			childSources = append(childSources, sourceRoot{fs: representative.fs, path: representative.handle.Path, basePath: representative.basePath})
		}
		if err := w.Walk(ctx, childSources, childDst); err != nil {
			return err
		}

		// Step 6g — prune now-empty directories.
		if w.opts.PruneEmptyDirs && !w.opts.DryRun && w.dstFS != nil {
			exists, err := w.dstFS.Exists(childDst)
			if err == nil && exists {
				children, err := w.dstFS.List(childDst)
				if err == nil && len(children) == 0 {
					if err := w.dstFS.Delete(childDst, false); err == nil {
						w.log.Action("PRUNE_DIR", false, false, childDst)
					}
				}
			}
		}
	}

	// Step 6h — metadata.
	if result.Skip || result.NoTarget {
		return nil
	}
	targetHandle := result.EffectiveHandle(representative.handle.IsDir)
	if targetHandle == nil {
		return nil
	}
	if w.planner != nil {
		isNew := existing == nil || existing.IsDir != representative.handle.IsDir
		if err := w.planner.Apply(w.dstFS, representative.handle, targetHandle, targetHandle.Path, isNew); err != nil {
			return err
		}
	}

	return nil
}
