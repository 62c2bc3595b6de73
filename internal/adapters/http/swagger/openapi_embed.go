package swagger

import _ "embed"

// OpenAPI is the classifier API description served at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
