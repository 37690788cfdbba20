// Package report formats the human-readable integration instructions printed
// after a successful run: preload tags, an import map, and sample import
// statements. Pure formatting over the completed library -> output mapping;
// the output is for humans and carries no stability guarantee.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"git.home.luguber.info/inful/esmpack/internal/bundle"
)

// Write renders the integration instructions for artifacts to w. moduleDir is
// the href prefix for the preload tags; the import map always uses paths
// relative to the serving directory.
func Write(w io.Writer, artifacts []bundle.Artifact, moduleDir string) error {
	if moduleDir == "" {
		moduleDir = "."
	}

	fmt.Fprintln(w, "Add the following to your HTML <head> to preload the bundles:")
	fmt.Fprintln(w)
	for _, a := range artifacts {
		fmt.Fprintf(w, "  <link rel=\"modulepreload\" href=\"%s\">\n", path.Join(moduleDir, a.File))
	}
	fmt.Fprintln(w)

	importMap, err := ImportMap(artifacts)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Map the bare package names with an import map:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  <script type=\"importmap\">")
	for _, line := range strings.Split(importMap, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w, "  </script>")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Then import the packages as usual:")
	fmt.Fprintln(w)
	for _, a := range artifacts {
		fmt.Fprintf(w, "  import %s from %q;\n", BindingName(a.Library), a.Library)
	}
	return nil
}

// ImportMap renders the import-map JSON fragment: one entry per artifact,
// keyed by exact package name, valued by a ./-relative bundle path.
func ImportMap(artifacts []bundle.Artifact) (string, error) {
	imports := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		imports[a.Library] = "./" + a.File
	}

	doc := struct {
		Imports map[string]string `json:"imports"`
	}{Imports: imports}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render import map: %w", err)
	}
	return string(data), nil
}

// BindingName derives an illustrative local binding from the last path
// segment of a package name. Characters not valid in an identifier map to
// underscores; a leading digit gets an underscore prefix.
func BindingName(library string) string {
	segment := library
	if idx := strings.LastIndex(library, "/"); idx >= 0 {
		segment = library[idx+1:]
	}

	var b strings.Builder
	for _, r := range segment {
		if r == '_' || r == '$' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	name := b.String()
	if name == "" {
		return "_"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
