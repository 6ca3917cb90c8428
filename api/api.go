// Package api embeds the OpenAPI document served and enforced by the reference server.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPISpec []byte
