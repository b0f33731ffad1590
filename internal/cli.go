package internal

import (
	"strings"

	"github.com/davidmdm/ansi"
)

var (
	cyan   = ansi.MakeStyle(ansi.FgCyan)
	yellow = ansi.MakeStyle(ansi.FgYellow)
)

// Colorize renders the color markers used in embedded help text.
// A line starting with !cyan or !yellow is printed in that color.
func Colorize(value string) string {
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		if len(line) == 0 || line[0] != '!' {
			continue
		}

		color, line, _ := strings.Cut(line, " ")
		switch color {
		case "!cyan":
			lines[i] = cyan.Sprint(line)
		case "!yellow":
			lines[i] = yellow.Sprint(line)
		default:
			lines[i] = line
		}
	}
	return strings.Join(lines, "\n")
}
