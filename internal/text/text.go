// Package text renders unified diffs between live and rendered manifest sets.
package text

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/davidmdm/ansi"
)

type File struct {
	Name    string
	Content string
}

// ToYamlFile serializes a value as an in-memory named YAML document.
func ToYamlFile(name string, value any) (File, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	err := encoder.Encode(value)
	return File{Name: name, Content: buffer.String()}, err
}

type DiffFunc func(live, rendered File, context int) string

// Diff is a unified diff from the live state to the rendered state: removals
// are what an apply would drop, additions what it would introduce.
func Diff(live, rendered File, context int) string {
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(live.Content),
		B:        difflib.SplitLines(rendered.Content),
		FromFile: live.Name,
		ToFile:   rendered.Name,
		Context:  context,
	})
	return diff
}

func DiffColorized(live, rendered File, context int) string {
	return colorize(Diff(live, rendered, context))
}

var (
	green = ansi.MakeStyle(ansi.FgGreen)
	red   = ansi.MakeStyle(ansi.FgRed)
)

func colorize(value string) string {
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			lines[i] = green.Sprint(line)
		case '-':
			lines[i] = red.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}
