package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jsonschemav5 "github.com/santhosh-tekuri/jsonschema/v5"

	"n8n-optimizer/src/core/domain"
)

// ErrInvalidDocument is wrapped by every ParseWorkflow failure
var ErrInvalidDocument = errors.New("invalid workflow JSON")

const documentSchemaID = "schema://workflow-document"

// documentNode and documentSchema describe the accepted upload shape.
// They are only reflected into JSON Schema; decoding uses domain.Workflow.
type documentNode struct {
	ID         string                 `json:"id" jsonschema:"required,minLength=1"`
	Name       string                 `json:"name,omitempty"`
	Type       string                 `json:"type,omitempty"`
	Position   []float64              `json:"position,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// documentPort is one output port: flat targets, target groups, or null
type documentPort []interface{}

func (documentPort) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "array"},
			{Type: "null"},
		},
	}
}

type documentSchema struct {
	Nodes       []documentNode                     `json:"nodes,omitempty"`
	Connections map[string]map[string]documentPort `json:"connections,omitempty"`
	Meta        map[string]interface{}             `json:"meta,omitempty"`
}

var (
	documentOnce     sync.Once
	compiledDocument *jsonschemav5.Schema
	documentErr      error
)

func compiledDocumentSchema() (*jsonschemav5.Schema, error) {
	documentOnce.Do(func() {
		reflector := jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			AllowAdditionalProperties:  true,
			DoNotReference:             true,
			Anonymous:                  true,
		}
		schemaBytes, err := json.Marshal(reflector.Reflect(&documentSchema{}))
		if err != nil {
			documentErr = fmt.Errorf("failed to marshal document schema: %w", err)
			return
		}
		compiledDocument, documentErr = compile(documentSchemaID, schemaBytes)
	})
	return compiledDocument, documentErr
}

// ParseWorkflow checks that raw is JSON, validates it against the document
// schema and decodes it. Absent nodes or connections decode as empty.
func ParseWorkflow(raw []byte) (domain.Workflow, error) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return domain.Workflow{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	schema, err := compiledDocumentSchema()
	if err != nil {
		return domain.Workflow{}, err
	}
	if err := schema.Validate(generic); err != nil {
		return domain.Workflow{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var wf domain.Workflow
	if err := json.Unmarshal(raw, &wf); err != nil {
		return domain.Workflow{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if wf.Nodes == nil {
		wf.Nodes = []domain.WorkflowNode{}
	}
	if wf.Connections == nil {
		wf.Connections = domain.Connections{}
	}
	return wf, nil
}

// ConvertStructToJSONSchema converts a Go struct to JSON Schema format
func ConvertStructToJSONSchema(schemaStruct interface{}) ([]byte, error) {
	if schemaStruct == nil {
		return nil, fmt.Errorf("schema struct is nil")
	}

	reflector := jsonschema.Reflector{}
	reflector.RequiredFromJSONSchemaTags = true
	schema := reflector.Reflect(schemaStruct)

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON schema: %w", err)
	}

	return schemaBytes, nil
}

// ValidateStepSchema validates a pipeline step's input against the schema struct
// its activity declares. Activities without a schema accept any input.
func ValidateStepSchema(activityName string, schemaStruct interface{}, stepInput map[string]interface{}) error {
	if schemaStruct == nil {
		return nil
	}

	if stepInput == nil {
		stepInput = make(map[string]interface{})
	}

	jsonSchemaBytes, err := ConvertStructToJSONSchema(schemaStruct)
	if err != nil {
		return fmt.Errorf("failed to convert schema struct to JSON Schema for activity '%s': %w", activityName, err)
	}

	schema, err := compile(fmt.Sprintf("schema://%s", activityName), jsonSchemaBytes)
	if err != nil {
		return fmt.Errorf("failed to compile schema for activity '%s': %w", activityName, err)
	}

	stepInputJSON, err := json.Marshal(stepInput)
	if err != nil {
		return fmt.Errorf("failed to marshal input data for activity '%s': %w", activityName, err)
	}

	var stepInputUnmarshaled interface{}
	if err := json.Unmarshal(stepInputJSON, &stepInputUnmarshaled); err != nil {
		return fmt.Errorf("failed to unmarshal input data for activity '%s': %w", activityName, err)
	}

	if err := schema.Validate(stepInputUnmarshaled); err != nil {
		return fmt.Errorf("schema validation failed for activity '%s': %w", activityName, err)
	}

	return nil
}

func compile(schemaID string, schemaBytes []byte) (*jsonschemav5.Schema, error) {
	compiler := jsonschemav5.NewCompiler()
	if err := compiler.AddResource(schemaID, bytes.NewReader(schemaBytes)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaID)
}
