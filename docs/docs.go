// Package docs registers the OpenAPI document with swag. Regenerate with
// `swag init -g cmd/braind/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{escape .Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Process a chat request",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "502": {"description": "Bad Gateway"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/backends": {
            "get": {
                "produces": ["application/json"],
                "summary": "List backends",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Orchestrator status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/settings": {
            "get": {
                "produces": ["application/json"],
                "summary": "Active settings snapshot",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Update runtime settings",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "braind API",
	Description:      "HTTP API for capability routing and backend lifecycle management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
