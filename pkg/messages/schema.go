package messages

import (
	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed event.schema.json
var eventSchemaJSON string

var eventSchema = jsonschema.MustCompileString("event.schema.json", eventSchemaJSON)
