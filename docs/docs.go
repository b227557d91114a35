// Package docs registers the OpenAPI document served under /swagger/ when the
// daemon is built with the swagger tag. It follows the layout swag init writes
// from the annotations in cmd/wifihald and internal/httpapi; keep them in sync.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "wifihal maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/dump": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["manager"],
                "summary": "Diagnostic dump",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}}
                }
            }
        },
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Recent manager events",
                "parameters": [
                    {"type": "integer", "description": "maximum number of events (1-1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.EventsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/ifaces": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ifaces"],
                "summary": "Live interfaces",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.IfaceStatus"}}}
                }
            },
            "post": {
                "description": "Lower priority interfaces may be torn down and the chip reconfigured.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ifaces"],
                "summary": "Create an interface",
                "parameters": [
                    {"description": "interface type", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreateIfaceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.IfaceStatus"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/ifaces/{name}": {
            "delete": {
                "tags": ["ifaces"],
                "summary": "Remove an interface",
                "parameters": [
                    {"type": "string", "description": "interface name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/start": {
            "post": {
                "produces": ["application/json"],
                "tags": ["manager"],
                "summary": "Start the Wi-Fi service",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ActionResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "description": "Chips, modes, live interfaces and pending availability listeners.",
                "produces": ["application/json"],
                "tags": ["manager"],
                "summary": "Manager status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        },
        "/stop": {
            "post": {
                "description": "Every interface is destroyed and status listeners are told.",
                "produces": ["application/json"],
                "tags": ["manager"],
                "summary": "Stop the Wi-Fi service",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ActionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ActionResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "state": {"type": "string"}
            }
        },
        "types.ChipStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "mode": {"type": "integer"},
                "modes": {"type": "array", "items": {"$ref": "#/definitions/types.ModeStatus"}}
            }
        },
        "types.CreateIfaceRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "sta"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "types.EventRecord": {
            "type": "object",
            "properties": {
                "chip": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": true},
                "iface": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "types.EventsResponse": {
            "type": "object",
            "properties": {
                "events": {"type": "array", "items": {"$ref": "#/definitions/types.EventRecord"}}
            }
        },
        "types.IfaceStatus": {
            "type": "object",
            "properties": {
                "chip": {"type": "integer"},
                "listeners": {"type": "integer"},
                "mode": {"type": "integer"},
                "name": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "types.ModeStatus": {
            "type": "object",
            "properties": {
                "combinations": {"type": "array", "items": {"type": "string"}},
                "id": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "chips": {"type": "array", "items": {"$ref": "#/definitions/types.ChipStatus"}},
                "generation": {"type": "integer"},
                "ifaces": {"type": "array", "items": {"$ref": "#/definitions/types.IfaceStatus"}},
                "pending_available": {"type": "object", "additionalProperties": {"type": "integer"}},
                "ready": {"type": "boolean"},
                "server_time_unix": {"type": "integer"},
                "service_bound": {"type": "boolean"},
                "state": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "wifihal API",
	Description:      "HTTP API for the Wi-Fi HAL device manager.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
