// objinfo is a CLI utility for inspecting Wavefront OBJ and MTL files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Faultbox/derky/internal/assets"
	"github.com/Faultbox/derky/internal/engine/model"
	"github.com/Faultbox/derky/pkg/encoding"
	"github.com/Faultbox/derky/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "materials", "mtl":
		err = cmdMaterials(os.Stdout, args)
	case "groups":
		err = cmdGroups(os.Stdout, args)
	case "check":
		err = cmdCheck(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `objinfo - Wavefront OBJ/MTL inspection utility

Usage:
  objinfo <command> [options] <file.obj>

Commands:
  info <file.obj>        Show object, group, face and material counts
  materials <file.obj>   List materials and their properties
  groups <file.obj>      Show the draw batches a renderer would issue
  check <file.obj>...    Parse files and report errors with line numbers

Options:
  -encoding <name>       Source charset (shift_jis, euc-kr, windows-1252, ...)

Examples:
  objinfo info models/room.obj
  objinfo materials -encoding shift_jis models/character.obj
  objinfo check models/*.obj`)
}

// parseArgs handles the flags shared by every command.
func parseArgs(name string, args []string) (*flag.FlagSet, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	enc := fs.String("encoding", "", "source charset of OBJ/MTL text")
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() < 1 {
		return nil, "", fmt.Errorf("usage: objinfo %s [-encoding name] <file.obj>", name)
	}
	return fs, *enc, nil
}

// parseFile parses path with its directory as the only asset root so
// mtllib statements resolve next to it.
func parseFile(path, charset string) (*formats.OBJ, error) {
	enc, err := encoding.Lookup(charset)
	if err != nil {
		return nil, err
	}
	store := assets.NewManager(assets.Options{Encoding: enc, Workers: 1})
	defer store.Close()

	if err := store.AddRoot(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return store.ParseOBJ(filepath.Base(path))
}

func cmdInfo(w io.Writer, args []string) error {
	fs, enc, err := parseArgs("info", args)
	if err != nil {
		return err
	}
	obj, err := parseFile(fs.Arg(0), enc)
	if err != nil {
		return err
	}

	var vertices, faces, triangles int
	for _, o := range obj.Objects {
		for _, g := range o.Groups {
			vertices += len(g.Vertices)
			faces += len(g.Faces)
			for _, f := range g.Faces {
				triangles += len(f.Indices) - 2
			}
		}
	}

	fmt.Fprintf(w, "File:      %s\n", fs.Arg(0))
	fmt.Fprintf(w, "Objects:   %d\n", len(obj.Objects))
	fmt.Fprintf(w, "Groups:    %d\n", obj.GroupCount())
	fmt.Fprintf(w, "Vertices:  %d\n", vertices)
	fmt.Fprintf(w, "Faces:     %d (%d triangles)\n", faces, triangles)
	fmt.Fprintf(w, "Materials: %d\n", len(obj.Materials))
	if len(obj.Warnings) > 0 {
		fmt.Fprintf(w, "Skipped:   %d statements\n", len(obj.Warnings))
	}
	return nil
}

func cmdMaterials(w io.Writer, args []string) error {
	fs, enc, err := parseArgs("materials", args)
	if err != nil {
		return err
	}
	obj, err := parseFile(fs.Arg(0), enc)
	if err != nil {
		return err
	}

	for _, m := range obj.Materials {
		fmt.Fprintf(w, "%s\n", m.Name)

		keys := make([]string, 0, len(m.Properties))
		for k := range m.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p := m.Properties[k]
			fmt.Fprintf(w, "  %-8s %-8s %s\n", k, p.Kind, p)
		}
	}
	if len(obj.Materials) == 0 {
		fmt.Fprintln(w, "(no materials)")
	}
	return nil
}

// batch is what the renderer would draw for one vertex group.
type batch struct {
	faces     int
	triangles int
}

func countFaces(faces [][]formats.FaceVertex) (batch, error) {
	b := batch{faces: len(faces)}
	for _, f := range faces {
		b.triangles += len(formats.Triangulate(len(f)))
	}
	return b, nil
}

func materialName(m formats.Material) (string, error) {
	return m.Name, nil
}

func cmdGroups(w io.Writer, args []string) error {
	fs, enc, err := parseArgs("groups", args)
	if err != nil {
		return err
	}
	obj, err := parseFile(fs.Arg(0), enc)
	if err != nil {
		return err
	}

	m, err := model.Build[batch, string](obj,
		model.VertexMapperFunc[batch](countFaces),
		model.MaterialMapperFunc[string](materialName))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%-5s %-20s %8s %10s\n", "#", "material", "faces", "triangles")
	for i, b := range m.VertexGroups {
		name := "(none)"
		if idx, ok := m.MaterialIndex(i); ok {
			name = m.Materials[idx]
		}
		fmt.Fprintf(w, "%-5d %-20s %8d %10d\n", i, name, b.faces, b.triangles)
	}
	fmt.Fprintf(w, "\n%d draw batches from %d groups\n", m.Len(), obj.GroupCount())
	return nil
}

func cmdCheck(w io.Writer, args []string) error {
	fs, enc, err := parseArgs("check", args)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range fs.Args() {
		obj, err := parseFile(path, enc)
		if err != nil {
			failed++
			var perr *formats.ParseError
			if errors.As(err, &perr) {
				fmt.Fprintf(w, "%s:%d: %s: %v\n", path, perr.Line, perr.Keyword, perr.Err)
			} else {
				fmt.Fprintf(w, "%s: %v\n", path, err)
			}
			continue
		}
		for _, warn := range obj.Warnings {
			fmt.Fprintf(w, "%s:%d: skipped %q\n", path, warn.Line, warn.Keyword)
		}
		fmt.Fprintf(w, "%s: ok\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, fs.NArg())
	}
	return nil
}
