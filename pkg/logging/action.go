package logging

import "fmt"

// Action emits exactly one record for an engine action, per the logging
// contract of spec §6.3: dry-run actions get a "[dryrun]" tag suffix and log
// at INFO, realized actions log at DEBUG, and the special log-only ("no
// destination configured") mode logs at INFO even though nothing was
// actually dry-run.
//
// tag is one of the fixed tags from §6.3 (CREATE_DIR, COPY_FILE, ...),
// optionally already carrying a bracketed qualifier such as
// "SKIP_FILE [existing]". detail is the human-readable path information
// appended after " - ".
func (l *Logger) Action(tag string, dryRun bool, logOnly bool, detail string) {
	if l == nil {
		return
	}
	if dryRun {
		tag += " [dryrun]"
	}
	line := fmt.Sprintf("%s - %s", tag, detail)
	if dryRun || logOnly {
		l.Infof("%s", line)
	} else {
		l.Debugf("%s", line)
	}
}

// Transfer formats the "src --> dst" detail string used by COPY_FILE and
// UPDATE_FILE actions.
func Transfer(src, dst string) string {
	return fmt.Sprintf("%s --> %s", src, dst)
}
