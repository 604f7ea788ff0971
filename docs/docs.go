// Package docs carries the OpenAPI document built from the handler annotations.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag/v2"
)

//go:generate swag init -g cmd/server/main.go -d ../ -o . --outputTypes json --parseInternal

//go:embed swagger.json
var docTemplate string

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Multi-locale storefront: catalog, collections, cart, checkout, orders and reviews, plus the back office.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
