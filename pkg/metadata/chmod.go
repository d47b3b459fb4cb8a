// Package metadata implements the Metadata Planner (spec §4.2): mtime,
// permission, and owner/group propagation, applied in a fixed order after
// recursive descent completes (spec invariant 3).
package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hdfssync/hrsync/pkg/filesystem"
)

// symbolicEditPattern validates the symbolic half of spec §6.1's chmod
// grammar: "[ugoa]{0,3}[+=-][rwxXt]{1,4}".
var symbolicEditPattern = regexp.MustCompile(`^[ugoa]{0,3}[+=\-][rwxXt]{1,4}$`)

// octalPattern validates the octal half: "[01]?[0-7]{3}".
var octalPattern = regexp.MustCompile(`^[01]?[0-7]{3}$`)

// SymbolicEdit is one parsed "who[+=-]perms" edit.
type SymbolicEdit struct {
	Who   string // subset of "ugoa"; empty means "a" (all)
	Op    byte   // '+', '=', or '-'
	Perms string // subset of "rwxXt"
}

// ChmodRules holds the parsed, per-kind permission mutations (spec §3
// ChmodRule): at most one octal replacement per kind, or an ordered chain of
// symbolic edits, never both for the same kind.
type ChmodRules struct {
	FileOctal     *filesystem.Mode
	FileSymbolic  []SymbolicEdit
	DirOctal      *filesystem.Mode
	DirSymbolic   []SymbolicEdit
}

// HasFileRule reports whether any file chmod rule was configured.
func (c *ChmodRules) HasFileRule() bool {
	return c != nil && (c.FileOctal != nil || len(c.FileSymbolic) > 0)
}

// HasDirRule reports whether any directory chmod rule was configured.
func (c *ChmodRules) HasDirRule() bool {
	return c != nil && (c.DirOctal != nil || len(c.DirSymbolic) > 0)
}

// ParseChmodCommands parses a list of chmod command strings (the
// `chmodCommands` config option, spec §6.1) into ChmodRules.
func ParseChmodCommands(commands []string) (*ChmodRules, error) {
	rules := &ChmodRules{}
	for _, cmd := range commands {
		if err := rules.apply(cmd); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func (c *ChmodRules) apply(cmd string) error {
	if cmd == "" {
		return errors.New("empty chmod command")
	}

	scopeFile, scopeDir := true, true
	rest := cmd
	switch rest[0] {
	case 'F':
		scopeDir = false
		rest = rest[1:]
	case 'D':
		scopeFile = false
		rest = rest[1:]
	}
	if rest == "" {
		return errors.Errorf("chmod command missing permission spec: %q", cmd)
	}

	if octalPattern.MatchString(rest) {
		bits, err := strconv.ParseUint(rest, 8, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid octal chmod command: %q", cmd)
		}
		mode := filesystem.ModeFromUnix(uint32(bits))
		if scopeFile {
			if c.FileOctal != nil {
				return errors.Errorf("at most one octal chmod replacement allowed per kind (file): %q", cmd)
			}
			if len(c.FileSymbolic) > 0 {
				return errors.Errorf("cannot mix octal and symbolic chmod rules for files: %q", cmd)
			}
			c.FileOctal = &mode
		}
		if scopeDir {
			if c.DirOctal != nil {
				return errors.Errorf("at most one octal chmod replacement allowed per kind (directory): %q", cmd)
			}
			if len(c.DirSymbolic) > 0 {
				return errors.Errorf("cannot mix octal and symbolic chmod rules for directories: %q", cmd)
			}
			c.DirOctal = &mode
		}
		return nil
	}

	if !symbolicEditPattern.MatchString(rest) {
		return errors.Errorf("invalid chmod command: %q", cmd)
	}
	opIdx := strings.IndexAny(rest, "+=-")
	edit := SymbolicEdit{
		Who:   rest[:opIdx],
		Op:    rest[opIdx],
		Perms: rest[opIdx+1:],
	}
	if edit.Who == "" {
		edit.Who = "a"
	}

	if scopeFile {
		if c.FileOctal != nil {
			return errors.Errorf("cannot mix octal and symbolic chmod rules for files: %q", cmd)
		}
		c.FileSymbolic = append(c.FileSymbolic, edit)
	}
	if scopeDir {
		if c.DirOctal != nil {
			return errors.Errorf("cannot mix octal and symbolic chmod rules for directories: %q", cmd)
		}
		c.DirSymbolic = append(c.DirSymbolic, edit)
	}
	return nil
}

// bitsFor returns the mode bits touched by a single character class ('u',
// 'g', or 'o') for permission letter p.
func bitsFor(who byte, p byte) filesystem.Mode {
	switch who {
	case 'u':
		switch p {
		case 'r':
			return filesystem.ModeUserRead
		case 'w':
			return filesystem.ModeUserWrite
		case 'x', 'X':
			return filesystem.ModeUserExecute
		}
	case 'g':
		switch p {
		case 'r':
			return filesystem.ModeGroupRead
		case 'w':
			return filesystem.ModeGroupWrite
		case 'x', 'X':
			return filesystem.ModeGroupExecute
		}
	case 'o':
		switch p {
		case 'r':
			return filesystem.ModeOthersRead
		case 'w':
			return filesystem.ModeOthersWrite
		case 'x', 'X':
			return filesystem.ModeOthersExecute
		}
	}
	return 0
}

// anyExecutableSet reports whether any of the nine rwx bits' executable
// positions are currently set, used to resolve the "X" permission letter
// (execute only if already executable somewhere, or if the target is a
// directory).
func anyExecutableSet(mode filesystem.Mode) bool {
	return mode&(filesystem.ModeUserExecute|filesystem.ModeGroupExecute|filesystem.ModeOthersExecute) != 0
}

// applySymbolicEdit applies a single symbolic edit to base, given whether
// the target is a directory (needed to resolve "X").
func applySymbolicEdit(base filesystem.Mode, edit SymbolicEdit, isDir bool) filesystem.Mode {
	var mask filesystem.Mode
	for _, p := range []byte(edit.Perms) {
		if p == 't' {
			mask |= filesystem.ModeSticky
			continue
		}
		effective := p
		if p == 'X' {
			if !isDir && !anyExecutableSet(base) {
				continue
			}
			effective = 'x'
		}
		whos := edit.Who
		if whos == "a" {
			whos = "ugo"
		}
		for _, w := range []byte(whos) {
			mask |= bitsFor(w, effective)
		}
	}

	switch edit.Op {
	case '+':
		return base | mask
	case '-':
		return base &^ mask
	case '=':
		// Clear only the bit categories ("who" classes) targeted by this
		// edit, then set the requested bits, leaving untouched classes as
		// they were.
		var clearMask filesystem.Mode
		whos := edit.Who
		if whos == "a" {
			whos = "ugo"
		}
		for _, w := range []byte(whos) {
			clearMask |= bitsFor(w, 'r') | bitsFor(w, 'w') | bitsFor(w, 'x')
		}
		return (base &^ clearMask) | mask
	default:
		return base
	}
}

// ApplyChain applies an ordered chain of symbolic edits to base.
func ApplyChain(base filesystem.Mode, chain []SymbolicEdit, isDir bool) filesystem.Mode {
	result := base
	for _, edit := range chain {
		result = applySymbolicEdit(result, edit, isDir)
	}
	return result
}

// Resolve computes the new permission mode for an entry of the given kind,
// starting from base, per the ChmodRule semantics of spec §4.2 step 2: an
// octal rule replaces outright, a symbolic chain edits incrementally, and
// the absence of any rule for the kind leaves base unchanged.
func (c *ChmodRules) Resolve(base filesystem.Mode, isDir bool) filesystem.Mode {
	if c == nil {
		return base
	}
	if isDir {
		if c.DirOctal != nil {
			return *c.DirOctal
		}
		if len(c.DirSymbolic) > 0 {
			return ApplyChain(base, c.DirSymbolic, isDir)
		}
		return base
	}
	if c.FileOctal != nil {
		return *c.FileOctal
	}
	if len(c.FileSymbolic) > 0 {
		return ApplyChain(base, c.FileSymbolic, isDir)
	}
	return base
}
