package github

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/release.schema.json
var releaseSchemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// getReleaseSchema compiles the embedded JSON schema once and returns it.
func getReleaseSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(releaseSchemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("release.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("release.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// validateReleaseJSON checks a raw API response against the release schema.
// A shape mismatch returns a SchemaError with one issue per failing location.
func validateReleaseJSON(url string, body []byte) error {
	schema, err := getReleaseSchema()
	if err != nil {
		return fmt.Errorf("loading release schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return &SchemaError{URL: url, Issues: []string{err.Error()}}
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("unexpected validation error type: %w", err)
	}
	return &SchemaError{URL: url, Issues: schemaIssues(ve)}
}

// schemaIssues walks the error tree and returns leaf-level messages with
// their instance locations.
func schemaIssues(ve *jsonschema.ValidationError) []string {
	var issues []string
	collectSchemaIssues(ve, &issues)
	if len(issues) == 0 {
		return []string{ve.Error()}
	}
	return issues
}

func collectSchemaIssues(ve *jsonschema.ValidationError, issues *[]string) {
	if len(ve.Causes) == 0 {
		if ve.ErrorKind == nil {
			return
		}
		msg := ve.ErrorKind.LocalizedString(printer)
		if len(ve.InstanceLocation) > 0 {
			msg = "/" + strings.Join(ve.InstanceLocation, "/") + ": " + msg
		}
		*issues = append(*issues, msg)
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaIssues(cause, issues)
	}
}
