package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const placeSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["x", "y", "structure"],
  "additionalProperties": false,
  "properties": {
    "x": {"type": "integer"},
    "y": {"type": "integer"},
    "structure": {"enum": ["none", "anchor", "hazard", "origin"]}
  }
}`

var placeSchema = jsonschema.MustCompileString("place.schema.json", placeSchemaJSON)

// decodePlace validates the body against the place schema before decoding.
func decodePlace(body io.Reader) (PlaceRequest, error) {
	var req PlaceRequest
	raw, err := io.ReadAll(body)
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return req, errors.New("invalid json")
	}
	if err := placeSchema.Validate(doc); err != nil {
		return req, fmt.Errorf("invalid place request: %w", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("invalid place request: %w", err)
	}
	return req, nil
}
