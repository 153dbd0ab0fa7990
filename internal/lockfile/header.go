// Package lockfile reads and writes the private constraints file and
// renders the provenance header at its top.
package lockfile

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Command is the program name printed in the reproduction command.
const Command = "pilecap"

// Header renders the comment block prepended to every generated file:
// a banner, the environment markers as sorted JSON, and the command that
// regenerates the file. outputFile is included in that command when not empty.
func Header(markers map[string]string, outputFile string) []string {
	update := []string{Command, "compile"}
	if outputFile != "" {
		update = append(update, "--output-file", outputFile)
	}

	result := []string{
		"#",
		"# This file is autogenerated by " + Command + " in an environment like:",
		"#",
	}
	for _, line := range markerLines(markers) {
		result = append(result, "#  "+line)
	}
	result = append(result,
		"#",
		"# To update, in an equivalent environment run:",
		"#",
		"#   "+strings.Join(update, " "),
		"#",
	)
	return result
}

// markerLines pretty-prints markers as two-space indented JSON.
// encoding/json sorts map keys.
func markerLines(markers map[string]string) []string {
	if markers == nil {
		markers = map[string]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(markers); err != nil {
		// map[string]string always encodes
		panic(err)
	}
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

// Compose joins header lines and the reconciled body into the final file
// text, terminated by exactly one newline.
func Compose(header []string, body string) string {
	lines := append([]string{}, header...)
	if body = strings.TrimRight(body, "\n"); body != "" {
		lines = append(lines, body)
	}
	return strings.Join(lines, "\n") + "\n"
}
