package store

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/defaults.schema.json
var defaultsSchemaJSON []byte

//go:embed schemas/offers.schema.json
var offersSchemaJSON []byte

// compileSchema compiles an embedded schema document. The schemas ship with
// the binary, so a compile failure is a programming error and panics at init.
func compileSchema(name string, raw []byte) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("embedded schema %s is not valid JSON: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("embedded schema %s could not be registered: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("embedded schema %s does not compile: %v", name, err))
	}
	return schema
}

var (
	defaultsSchema = compileSchema("defaults.schema.json", defaultsSchemaJSON)
	offersSchema   = compileSchema("offers.schema.json", offersSchemaJSON)
)
