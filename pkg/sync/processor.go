package sync

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/hdfssync/hrsync/pkg/filesystem"
	"github.com/hdfssync/hrsync/pkg/logging"
)

// ProcessorOptions carries the subset of config.Config the Entry Processor
// needs (spec §4.3, §6.1).
type ProcessorOptions struct {
	DryRun              bool
	Recurse             bool
	CopyDirs            bool
	Existing            bool
	IgnoreExisting      bool
	Update              bool
	SizeOnly            bool
	IgnoreTimes         bool
	AcceptedTimesDiffMs int64
}

// Processor decides, for one source entry and its target slot, whether to
// copy, update, skip, create, or overwrite, and performs the action (spec
// §4.3).
type Processor struct {
	opts ProcessorOptions
	log  *logging.Logger

	bytesTransferred int64
}

// NewProcessor constructs an Entry Processor.
func NewProcessor(opts ProcessorOptions, log *logging.Logger) *Processor {
	return &Processor{opts: opts, log: log}
}

// BytesTransferred reports the cumulative size of every file actually
// copied or updated so far (realized writes only; dry-run and log-only
// actions never contribute).
func (p *Processor) BytesTransferred() int64 {
	return atomic.LoadInt64(&p.bytesTransferred)
}

// different implements spec §4.3's difference predicate exactly as stated:
// sizes differing always counts as different; otherwise sizeOnly suppresses
// the time check, and when the time check runs, mtimes that fall *within*
// tolerance of each other also count as different (this inverted-looking
// clause is intentional and must not be "corrected").
func (p *Processor) different(src, dst *filesystem.FileHandle) bool {
	if p.opts.IgnoreTimes {
		return true
	}
	if src.Size != dst.Size {
		return true
	}
	if p.opts.SizeOnly {
		return false
	}
	diff := src.ModTimeMs - dst.ModTimeMs
	if diff < 0 {
		diff = -diff
	}
	return diff <= p.opts.AcceptedTimesDiffMs
}

// Process implements the Entry Processor for one (src, target) pair. fs is
// the destination filesystem (nil if there is no destination configured,
// i.e. log-only mode); srcFS is the source filesystem the entry was read
// from. target is the destination slot path (empty string if there is no
// destination at all); existing is the current destination handle at that
// slot, or nil if nothing is there yet.
func (p *Processor) Process(ctx context.Context, fs, srcFS filesystem.FS, src *filesystem.FileHandle, target string, existing *filesystem.FileHandle) (*Target, error) {
	if src.IsDir {
		return p.processDirectory(ctx, fs, srcFS, src, target, existing)
	}
	return p.processFile(ctx, fs, srcFS, src, target, existing)
}

func (p *Processor) processFile(ctx context.Context, fs, srcFS filesystem.FS, src *filesystem.FileHandle, target string, existing *filesystem.FileHandle) (*Target, error) {
	if fs == nil || target == "" {
		p.log.Action("COPY_FILE [no-dst]", false, true, src.Path)
		return &Target{NoTarget: true}, nil
	}

	isNew := existing == nil || existing.IsDir != src.IsDir

	if isNew {
		if p.opts.Existing {
			p.log.Action("SKIP_FILE [existing]", p.opts.DryRun, false, target)
			return &Target{Path: target, Skip: true}, nil
		}
		if existing != nil && existing.IsDir {
			// A directory occupies the slot a file now needs; clear it
			// first, mirroring the symmetric overwrite-file case in the
			// directory table.
			if !p.opts.DryRun {
				if err := fs.Delete(target, true); err != nil {
					return nil, errors.Wrapf(err, "unable to remove directory occupying file slot %s", target)
				}
			}
		}
		return p.copyFile(ctx, fs, srcFS, src, target, "COPY_FILE")
	}

	if !p.different(src, existing) {
		p.log.Action("SAME_FILE", false, false, target)
		return &Target{Path: target, Handle: existing}, nil
	}

	if p.opts.IgnoreExisting {
		p.log.Action("SKIP_FILE [ignore-existing]", p.opts.DryRun, false, target)
		return &Target{Path: target, Skip: true}, nil
	}
	if p.opts.Update && !(src.ModTimeMs > existing.ModTimeMs) {
		p.log.Action("SKIP_FILE [update]", p.opts.DryRun, false, target)
		return &Target{Path: target, Skip: true}, nil
	}

	return p.copyFile(ctx, fs, srcFS, src, target, "UPDATE_FILE")
}

func (p *Processor) copyFile(ctx context.Context, fs, srcFS filesystem.FS, src *filesystem.FileHandle, target, tag string) (*Target, error) {
	if p.opts.DryRun {
		p.log.Action(tag, true, false, logging.Transfer(src.Path, target))
		return &Target{Path: target}, nil
	}
	if err := fs.Copy(ctx, srcFS, src.Path, target, true); err != nil {
		return nil, errors.Wrapf(err, "unable to copy %s to %s", src.Path, target)
	}
	atomic.AddInt64(&p.bytesTransferred, src.Size)
	p.log.Action(tag, false, false, logging.Transfer(src.Path, target))
	handle, err := fs.Stat(target)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat newly written %s", target)
	}
	return &Target{Path: target, Handle: handle}, nil
}

func (p *Processor) processDirectory(ctx context.Context, fs, srcFS filesystem.FS, src *filesystem.FileHandle, target string, existing *filesystem.FileHandle) (*Target, error) {
	if fs == nil || target == "" {
		p.log.Action("CREATE_DIR [no-dst]", false, true, src.Path)
		return &Target{NoTarget: true}, nil
	}

	if !p.opts.Recurse {
		if !p.opts.CopyDirs {
			p.log.Action("SKIP_DIR [no-recurse]", false, false, target)
			return &Target{Path: target, Skip: true}, nil
		}
		// copyDirs: treat the directory as an opaque unit, per the file
		// decision table, but "copying" it means creating it, not
		// transferring byte content.
		if existing == nil {
			if p.opts.Existing {
				p.log.Action("SKIP_DIR [existing]", p.opts.DryRun, false, target)
				return &Target{Path: target, Skip: true}, nil
			}
			return p.mkdir(fs, target, "CREATE_DIR")
		}
		if !existing.IsDir {
			return p.overwriteWithDir(fs, target)
		}
		if p.opts.IgnoreExisting {
			p.log.Action("SKIP_DIR [ignore-existing]", p.opts.DryRun, false, target)
			return &Target{Path: target, Skip: true}, nil
		}
		if p.opts.Update && !(src.ModTimeMs > existing.ModTimeMs) {
			p.log.Action("SKIP_DIR [update]", p.opts.DryRun, false, target)
			return &Target{Path: target, Skip: true}, nil
		}
		p.log.Action("SAME_FILE", false, false, target)
		return &Target{Path: target, Handle: existing}, nil
	}

	if existing == nil {
		return p.mkdir(fs, target, "CREATE_DIR")
	}
	if !existing.IsDir {
		return p.overwriteWithDir(fs, target)
	}
	p.log.Action("SKIP_DIR", false, false, target)
	return &Target{Path: target, Handle: existing}, nil
}

func (p *Processor) mkdir(fs filesystem.FS, target, tag string) (*Target, error) {
	if p.opts.DryRun {
		p.log.Action(tag, true, false, target)
		return &Target{Path: target}, nil
	}
	if err := fs.Mkdir(target); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory %s", target)
	}
	p.log.Action(tag, false, false, target)
	handle, err := fs.Stat(target)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat newly created directory %s", target)
	}
	return &Target{Path: target, Handle: handle}, nil
}

func (p *Processor) overwriteWithDir(fs filesystem.FS, target string) (*Target, error) {
	if p.opts.DryRun {
		p.log.Action("OVERWRITE_DIR", true, false, target)
		return &Target{Path: target}, nil
	}
	if err := fs.Delete(target, false); err != nil {
		return nil, errors.Wrapf(err, "unable to remove file occupying directory slot %s", target)
	}
	if err := fs.Mkdir(target); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory %s", target)
	}
	p.log.Action("OVERWRITE_DIR", false, false, target)
	handle, err := fs.Stat(target)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat newly created directory %s", target)
	}
	return &Target{Path: target, Handle: handle}, nil
}
