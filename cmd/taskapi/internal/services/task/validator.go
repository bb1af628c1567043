package task

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/task_input.json
var taskInputSchema []byte

const taskInputSchemaURL = "task_input.json"

// maxMessageLen caps a single field message.
const maxMessageLen = 200

// InputValidator checks task inputs against the embedded JSON schema.
// A compiled schema is immutable, so one validator may be shared.
type InputValidator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// NewInputValidator compiles the task input schema.
func NewInputValidator() (*InputValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(taskInputSchema))
	if err != nil {
		return nil, fmt.Errorf("parse task schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	compiler.AssertFormat()

	if err := compiler.AddResource(taskInputSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add task schema resource: %w", err)
	}
	schema, err := compiler.Compile(taskInputSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile task schema: %w", err)
	}

	return &InputValidator{
		schema:  schema,
		printer: message.NewPrinter(language.English),
	}, nil
}

// ValidateDocument validates a raw JSON document. Malformed JSON is reported
// as a validation error on "$".
func (v *InputValidator) ValidateDocument(raw []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "$", Message: "malformed JSON body"}}}
	}
	return v.validate(doc)
}

// Validate validates an already decoded Input.
func (v *InputValidator) Validate(in Input) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode task input: %w", err)
	}
	return v.ValidateDocument(raw)
}

func (v *InputValidator) validate(doc any) error {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate task input: %w", err)
	}
	return &ValidationError{Fields: v.fieldErrors(ve)}
}

// fieldErrors flattens the cause tree into one entry per failing leaf,
// sorted by field so output is stable.
func (v *InputValidator) fieldErrors(ve *jsonschema.ValidationError) []FieldError {
	var out []FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			msg := e.ErrorKind.LocalizedString(v.printer)
			if len(msg) > maxMessageLen {
				msg = msg[:maxMessageLen] + "... (truncated)"
			}
			out = append(out, FieldError{Field: jsonPath(e.InstanceLocation), Message: msg})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// jsonPath renders an instance location as "$.a.b".
func jsonPath(location []string) string {
	var parts []string
	for _, part := range location {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "$"
	}
	return "$." + strings.Join(parts, ".")
}
