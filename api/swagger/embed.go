// Package swagger holds the OpenAPI document served under /api-docs.
package swagger

import _ "embed"

// Spec is the OpenAPI 3 document describing the user API.
//
//go:embed user.swagger.json
var Spec []byte
