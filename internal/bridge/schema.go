package bridge

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// compileSchema compiles a command's argument schema. The resource name only
// has to be unique within one compiler.
func compileSchema(name, schema string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema JSON: %w", err)
	}

	url := name + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return compiled, nil
}

// validateArgs checks raw JSON arguments against schema. Missing arguments
// are treated as an empty object.
func validateArgs(schema *jsonschema.Schema, args []byte) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = []byte("{}")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgs, strings.Join(collectIssues(ve), "; "))
}

// collectIssues flattens the error tree into leaf messages, skipping the
// combinator keywords that only say "a child failed".
func collectIssues(ve *jsonschema.ValidationError) []string {
	var issues []string
	seen := map[string]bool{}

	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		if e.ErrorKind == nil {
			return
		}

		kw := e.ErrorKind.KeywordPath()
		if len(kw) == 0 {
			return
		}
		switch kw[len(kw)-1] {
		case "oneOf", "allOf", "anyOf", "$ref":
			return
		}

		msg := e.ErrorKind.LocalizedString(printer)
		if len(e.InstanceLocation) > 0 {
			msg = "/" + strings.Join(e.InstanceLocation, "/") + ": " + msg
		}
		if !seen[msg] {
			seen[msg] = true
			issues = append(issues, msg)
		}
	}
	walk(ve)

	if len(issues) == 0 {
		return []string{ve.Error()}
	}
	return issues
}
