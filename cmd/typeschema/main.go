package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/introspect/srcscan"
	"github.com/reoring/typeschema/jsonschema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "gen":
		genCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "typeschema CLI\n\nUsage:\n  typeschema gen -pkg ./path/to/pkg -type TypeName [-preset default|strict|openapi] [-function] [-annotations allow.yaml] [-o out.json]")
}

func genCmd(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	var pkgdir string
	var typeName string
	var preset string
	var function bool
	var annotations string
	var out string
	fs.StringVar(&pkgdir, "pkg", ".", "directory of the package that declares the type")
	fs.StringVar(&typeName, "type", "", "type name to generate a schema for")
	fs.StringVar(&preset, "preset", "default", "config preset: default|strict|openapi")
	fs.BoolVar(&function, "function", false, "wrap output as an LLM function-calling declaration")
	fs.StringVar(&annotations, "annotations", "", "YAML file overriding the annotation allow-lists")
	fs.StringVar(&out, "o", "", "output filename (stdout when empty)")
	_ = fs.Parse(args)
	if typeName == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := presetConfig(preset)
	if err != nil {
		fatalf("%v", err)
	}

	var loadOpts []srcscan.Option
	if annotations != "" {
		data, err := os.ReadFile(annotations)
		if err != nil {
			fatalf("reading annotations file: %v", err)
		}
		opts, err := typeschema.LoadDescriptionOptions(data)
		if err != nil {
			fatalf("%v", err)
		}
		loadOpts = append(loadOpts, srcscan.WithDescriptionOptions(opts))
	}

	pkg, err := srcscan.Load(pkgdir, loadOpts...)
	if err != nil {
		fatalf("%v", err)
	}
	g, err := pkg.Graph(typeName)
	if err != nil {
		fatalf("%v", err)
	}

	rootName := pkg.Path() + "." + typeName
	var doc any
	if function {
		doc, err = jsonschema.TransformFunction(g, typeName, cfg)
	} else {
		doc, err = jsonschema.Transform(g, rootName, cfg)
	}
	if err != nil {
		fatalf("%v", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fatalf("encoding schema: %v", err)
	}
	data = append(data, '\n')

	if out == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			fatalf("writing output: %v", err)
		}
		return
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir: %v", err)
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

func presetConfig(name string) (typeschema.Config, error) {
	switch name {
	case "default":
		return typeschema.Default(), nil
	case "strict":
		return typeschema.Strict(), nil
	case "openapi":
		return typeschema.OpenAPI(), nil
	}
	return typeschema.Config{}, fmt.Errorf("unknown preset %q", name)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "typeschema: "+format+"\n", a...)
	os.Exit(1)
}
