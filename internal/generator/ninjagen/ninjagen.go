// Package ninjagen emits the ninja build script spec.md §4.5 names
// ("Code / config generators... ninja rules"). It also provides
// ExpandSearchDirs, which expands glob patterns such as "components/**"
// in a search-directory list with bmatcuk/doublestar/v4 and returns a
// directory with no glob metacharacter unchanged. The mk* front-ends do
// not call ExpandSearchDirs: their -s/-i arguments reach the modeller
// unexpanded.
package ninjagen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/legato-af/mktools/internal/model"
)

// ExpandSearchDirs expands any entry containing a glob metacharacter
// ("*" or "**") against the filesystem, leaving plain directories
// untouched, and returns the result sorted and de-duplicated so repeated
// ninjagen runs over the same inputs are deterministic.
func ExpandSearchDirs(dirs []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, d := range dirs {
		if !strings.ContainsRune(d, '*') {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
			continue
		}
		matches, err := doublestar.FilepathGlob(d)
		if err != nil {
			return nil, fmt.Errorf("ninjagen: expanding glob %q: %w", d, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Rule is one ninja build statement: an output built from inputs by a
// named rule, with extra key=value variables passed through.
type Rule struct {
	Output  string
	Rule    string
	Inputs  []string
	Vars    map[string]string
}

// BuildRulesForApp derives the compile/link/stage ninja rules for one
// app: one "cc" rule per component source file, one "link" rule per exe
// pulling in its components' object files in dependency order (spec.md
// Invariant 3 / ordering guarantee 3), and one "stage_config" rule copying the
// rendered root.cfg into the app's staging directory.
func BuildRulesForApp(app *model.App, workDir string) []Rule {
	var rules []Rule
	for _, exe := range app.Exes {
		var objs []string
		for _, ci := range exe.Components {
			for _, src := range ci.Component.Sources {
				obj := fmt.Sprintf("%s/obj/%s/%s.o", workDir, ci.Component.Name, baseNoExt(src))
				rules = append(rules, Rule{Output: obj, Rule: "cc", Inputs: []string{src}})
				objs = append(objs, obj)
			}
		}
		rules = append(rules, Rule{
			Output: fmt.Sprintf("%s/bin/%s", workDir, exe.Name),
			Rule:   "link",
			Inputs: objs,
		})
	}
	rules = append(rules, Rule{
		Output: fmt.Sprintf("%s/app/%s/staging/root.cfg", workDir, app.Name),
		Rule:   "stage_config",
		Inputs: []string{fmt.Sprintf("%s.adef", app.Name)},
	})
	return rules
}

// Render writes rules as ninja build statements in slice order, stable
// across runs because BuildRulesForApp appends in the model's own
// dependency order rather than iterating a map.
func Render(rules []Rule) []byte {
	var b strings.Builder
	for _, r := range rules {
		fmt.Fprintf(&b, "build %s: %s %s\n", r.Output, r.Rule, strings.Join(r.Inputs, " "))
		var keys []string
		for k := range r.Vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s = %s\n", k, r.Vars[k])
		}
	}
	return []byte(b.String())
}

func baseNoExt(path string) string {
	base := path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
