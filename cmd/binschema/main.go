// Command binschema is a small inspection tool for the binschema wire
// format: it can print a schema's canonical self-encoding, validate a
// schema's structure, and round-trip a sample value through a registered
// example schema.
//
// Usage:
//
//	binschema self <example>
//	binschema validate <example>
//	binschema roundtrip <example>
//	binschema version
//
// Run 'binschema help' for the list of built-in example schemas.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"reflect"

	"github.com/blockberries/binschema/pkg/coder"
	"github.com/blockberries/binschema/pkg/knownschema"
	"github.com/blockberries/binschema/pkg/reflectcodec"
	"github.com/blockberries/binschema/pkg/schema"
)

// examplePerson and exampleShape are the CLI's closed set of built-in
// sample types. A real deployment would load schemas from files the way
// the teacher's cramberry read .schema sources; this CLI only needs to
// exercise the library end to end, so its examples are wired in directly.
type examplePerson struct {
	Name string   `binschema:"name"`
	Age  uint8    `binschema:"age"`
	Tags []string `binschema:"tags"`
}

type exampleShape interface {
	isExampleShape()
}

type exampleCircle struct {
	Radius float64 `binschema:"radius"`
}

func (exampleCircle) isExampleShape() {}

type exampleRect struct {
	Width  float64 `binschema:"width"`
	Height float64 `binschema:"height"`
}

func (exampleRect) isExampleShape() {}

// exampleShapeBox wraps a shape so it has a concrete top-level type:
// reflect.ValueOf always reports a value's dynamic type, so a bare
// exampleShape boxed in an any would reflect as exampleCircle, never as
// the interface itself. Marshal therefore always sees enum fields through
// a containing struct, same as the teacher's own interface fields do.
type exampleShapeBox struct {
	Shape exampleShape `binschema:"shape"`
}

var exampleReg = buildExampleRegistry()

func buildExampleRegistry() *knownschema.Registry {
	reg := knownschema.NewRegistry()
	if err := reg.RegisterStructType(reflect.TypeOf(examplePerson{})); err != nil {
		panic(err)
	}
	if err := reg.RegisterStructType(reflect.TypeOf(exampleCircle{})); err != nil {
		panic(err)
	}
	if err := reg.RegisterStructType(reflect.TypeOf(exampleRect{})); err != nil {
		panic(err)
	}
	if err := reg.RegisterStructType(reflect.TypeOf(exampleShapeBox{})); err != nil {
		panic(err)
	}
	err := reg.RegisterUnionType(reflect.TypeOf((*exampleShape)(nil)).Elem(), []knownschema.UnionVariant{
		{Name: "Circle", Sample: exampleCircle{}},
		{Name: "Rect", Sample: exampleRect{}},
	})
	if err != nil {
		panic(err)
	}
	return reg
}

type example struct {
	schemaType reflect.Type
	sample     any
}

var examples = map[string]example{
	"person": {
		schemaType: reflect.TypeOf(examplePerson{}),
		sample:     examplePerson{Name: "Ada Lovelace", Age: 36, Tags: []string{"mathematician", "writer"}},
	},
	"shapes": {
		schemaType: reflect.TypeOf(exampleShapeBox{}),
		sample:     exampleShapeBox{Shape: exampleCircle{Radius: 2.5}},
	},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "self", "s":
		cmdSelf(os.Args[2:])
	case "validate", "v":
		cmdValidate(os.Args[2:])
	case "roundtrip", "r":
		cmdRoundtrip(os.Args[2:])
	case "version":
		fmt.Println("binschema dev")
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`binschema - schema-driven binary serialization inspector

Usage:
  binschema self <example>       Print an example schema's self-encoded bytes
  binschema validate <example>   Validate an example schema's structure
  binschema roundtrip <example>  Round-trip a sample value through its schema
  binschema version               Print version information
  binschema help                  Print this help message

Examples: person, shapes`)
}

func lookupExample(args []string) (example, schema.Schema, bool) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	ex, ok := examples[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown example: %q (see 'binschema help')\n", name)
		return example{}, schema.Schema{}, false
	}
	s, err := exampleReg.For(ex.schemaType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve schema for %q: %v\n", name, err)
		return example{}, schema.Schema{}, false
	}
	return ex, s, true
}

func cmdSelf(args []string) {
	_, s, ok := lookupExample(args)
	if !ok {
		os.Exit(1)
	}
	data, err := coder.EncodeSchema(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "self-encode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hex.EncodeToString(data))
}

func cmdValidate(args []string) {
	_, s, ok := lookupExample(args)
	if !ok {
		os.Exit(1)
	}
	errs := schema.Validate(s)
	if len(errs) == 0 {
		fmt.Println("ok")
		return
	}
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e.Error())
	}
	os.Exit(1)
}

func cmdRoundtrip(args []string) {
	ex, _, ok := lookupExample(args)
	if !ok {
		os.Exit(1)
	}

	data, err := reflectcodec.MarshalWithRegistry(ex.sample, exampleReg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("encoded %d bytes: %s\n", len(data), hex.EncodeToString(data))

	out := reflect.New(reflect.TypeOf(ex.sample))
	if err := reflectcodec.UnmarshalWithRegistry(data, out.Interface(), exampleReg); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("decoded: %+v\n", out.Elem().Interface())
}
