// Package schemas holds the JSON Schema files shipped with the binary.
package schemas

import _ "embed"

// ExtractionConfig is the schema for extraction tuning files.
//
//go:embed extraction_config.schema.json
var ExtractionConfig string
