package filter

import "github.com/pkg/errors"

// Filter is an ordered, compiled list of filter rules.
type Filter struct {
	rules []*Rule
}

// Compile compiles an ordered list of rule strings into a Filter. A
// malformed rule is a FilterCompileError (spec §7), reported here at
// construction time so the engine never sees an invalid rule.
func Compile(ruleStrings []string) (*Filter, error) {
	rules := make([]*Rule, 0, len(ruleStrings))
	for _, rs := range ruleStrings {
		r, err := CompileRule(rs)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return &Filter{rules: rules}, nil
}

// CompileRule compiles a single rule string, wrapping failures as
// FilterCompileError.
func CompileRule(ruleString string) (*Rule, error) {
	r, err := compileRule(ruleString)
	if err != nil {
		return nil, &CompileError{Rule: ruleString, Cause: err}
	}
	return r, nil
}

// CompileError reports a filter rule that failed to parse or validate.
type CompileError struct {
	Rule  string
	Cause error
}

func (e *CompileError) Error() string {
	return errors.Wrapf(e.Cause, "invalid filter rule %q", e.Rule).Error()
}

func (e *CompileError) Unwrap() error { return e.Cause }

// Select applies the filter's selection algorithm (spec §4.1) to a single
// entry: scan the rules in order and return the polarity of the first rule
// that applies. If no rule applies, the entry is kept (Include, false).
// matchedExclude reports whether the first applicable rule was an Exclude
// rule (used to decide which EXCLUDE_* log tag, if any, applies); it is false
// both when an Include rule applied and when no rule applied.
func (f *Filter) Select(entryPath, basePath string, isDir bool) (keep bool, matchedExclude bool) {
	for _, r := range f.rules {
		if r.Applies(entryPath, basePath, isDir) {
			if r.Polarity == Exclude {
				return false, true
			}
			return true, false
		}
	}
	return true, false
}

// Rules returns the compiled rule list, in order.
func (f *Filter) Rules() []*Rule {
	return f.rules
}
