package metadata

import (
	"github.com/hdfssync/hrsync/pkg/filesystem"
	"github.com/hdfssync/hrsync/pkg/logging"
)

// Options carries the subset of config.Config the planner needs (spec
// §4.2). Kept as a small local struct, rather than importing pkg/config, to
// avoid a dependency cycle (pkg/config itself just assembles these knobs).
type Options struct {
	DryRun               bool
	PreserveTimes        bool
	PreservePerms        bool
	PreserveOwner        bool
	PreserveGroup        bool
	AcceptedTimesDiffMs  int64
	Chmod                *ChmodRules
	UserMap, GroupMap    *NameMapping
}

// Planner applies mtime, permission, and owner/group mutations to a
// processed entry, in the fixed order required by spec invariant 3 (after
// recursive descent into a directory completes).
type Planner struct {
	opts Options
	log  *logging.Logger
}

// New constructs a Planner.
func New(opts Options, log *logging.Logger) *Planner {
	return &Planner{opts: opts, log: log}
}

// Apply runs all three metadata steps against target on fs, using src as
// the source of truth and existing as the destination's current state once
// the Entry Processor has handled the entry (the handle of a just-written
// target included); when existing is nil, the time step is skipped and every
// other value is treated as changed. isNew indicates whether target was just
// created (spec §4.2 step 2 "entry is new").
func (p *Planner) Apply(fs filesystem.FS, src, existing *filesystem.FileHandle, target string, isNew bool) error {
	if err := p.applyTimes(fs, src, existing, target); err != nil {
		return err
	}
	if err := p.applyPermissions(fs, src, existing, target, isNew); err != nil {
		return err
	}
	if err := p.applyOwnership(fs, src, existing, target); err != nil {
		return err
	}
	return nil
}

// applyTimes implements spec §4.2 step 1.
func (p *Planner) applyTimes(fs filesystem.FS, src, existing *filesystem.FileHandle, target string) error {
	if !p.opts.PreserveTimes || existing == nil {
		return nil
	}
	if existing.IsDir != src.IsDir {
		return nil
	}
	diff := src.ModTimeMs - existing.ModTimeMs
	if diff < 0 {
		diff = -diff
	}
	if diff <= p.opts.AcceptedTimesDiffMs {
		return nil
	}
	if p.opts.DryRun {
		p.log.Action("UPDATE_TIMES", true, false, target)
		return nil
	}
	if err := fs.SetTimes(target, src.ModTimeMs); err != nil {
		return err
	}
	p.log.Action("UPDATE_TIMES", false, false, target)
	return nil
}

// applyPermissions implements spec §4.2 step 2.
func (p *Planner) applyPermissions(fs filesystem.FS, src, existing *filesystem.FileHandle, target string, isNew bool) error {
	hasChmodRule := src.IsDir && p.opts.Chmod.HasDirRule() || !src.IsDir && p.opts.Chmod.HasFileRule()
	if !p.opts.PreservePerms && !(isNew && hasChmodRule) {
		return nil
	}

	var base filesystem.Mode
	if p.opts.PreservePerms {
		base = src.Permissions
	} else if existing != nil {
		base = existing.Permissions
	}

	newMode := p.opts.Chmod.Resolve(base, src.IsDir)

	if existing != nil && newMode == existing.Permissions {
		return nil
	}
	if p.opts.DryRun {
		p.log.Action("UPDATE_PERMS", true, false, target)
		return nil
	}
	if err := fs.SetPermission(target, newMode); err != nil {
		return err
	}
	p.log.Action("UPDATE_PERMS", false, false, target)
	return nil
}

// applyOwnership implements spec §4.2 step 3.
func (p *Planner) applyOwnership(fs filesystem.FS, src, existing *filesystem.FileHandle, target string) error {
	if !p.opts.PreserveOwner && !p.opts.PreserveGroup {
		return nil
	}

	newOwner, newGroup := "", ""
	changed := false

	if p.opts.PreserveOwner {
		newOwner = p.opts.UserMap.Resolve(src.Owner)
		if existing == nil || newOwner != existing.Owner {
			changed = true
		}
	}
	if p.opts.PreserveGroup {
		newGroup = p.opts.GroupMap.Resolve(src.Group)
		if existing == nil || newGroup != existing.Group {
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if p.opts.DryRun {
		p.log.Action("UPDATE_OWNER_GROUP", true, false, target)
		return nil
	}
	if err := fs.SetOwner(target, newOwner, newGroup); err != nil {
		return err
	}
	p.log.Action("UPDATE_OWNER_GROUP", false, false, target)
	return nil
}
