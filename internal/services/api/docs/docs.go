// Package docs holds the OpenAPI document for the api binary
//
// Paths mirror the @Router annotations on the handlers; api tests fail when a
// mounted route is missing here. Regenerate from the annotations with go generate
package docs

//go:generate swag init --v3.1 --instanceName api -g main.go -d ../../../../cmd/modhost-api,../app/http,../meta/http -o .

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/": {
            "get": {
                "tags": ["App"],
                "summary": "Greeting",
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}, "example": {"status_code": 200, "status": "OK", "data": "Hello World!"}}}}
                }
            }
        },
        "/meta/health": {
            "get": {
                "tags": ["Meta"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HealthResponse"}}}}}
            }
        },
        "/meta/ready": {
            "get": {
                "tags": ["Meta"],
                "summary": "Readiness probe with dependency checks",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReadyResponse"}}}}}
            }
        },
        "/meta/version": {
            "get": {
                "tags": ["Meta"],
                "summary": "Build and version info",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/BuildInfo"}}}}}
            }
        },
        "/meta/service": {
            "get": {
                "tags": ["Meta"],
                "summary": "Service instance and uptime",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ServiceResponse"}}}}}
            }
        },
        "/meta/modules": {
            "get": {
                "tags": ["Meta"],
                "summary": "Composed module graph",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Graph"}}}}}
            }
        },
        "/meta/routes": {
            "get": {
                "tags": ["Meta"],
                "summary": "Mounted routes",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/RouteInfo"}}}}}}
            }
        }
    },
    "components": {
        "schemas": {
            "Envelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer"},
                    "status": {"type": "string"},
                    "request_id": {"type": "string"},
                    "data": {}
                }
            },
            "HealthResponse": {
                "type": "object",
                "properties": {
                    "ok": {"type": "boolean"},
                    "service": {"type": "string"},
                    "started": {"type": "string", "format": "date-time"},
                    "now": {"type": "string", "format": "date-time"}
                }
            },
            "ReadyCheck": {
                "type": "object",
                "properties": {
                    "name": {"type": "string", "example": "pg"},
                    "status": {"type": "string", "enum": ["ok", "fail", "skipped"]},
                    "error": {"type": "string"}
                }
            },
            "ReadyResponse": {
                "type": "object",
                "properties": {
                    "status": {"type": "string", "enum": ["ok", "degraded", "fail"]},
                    "checks": {"type": "array", "items": {"$ref": "#/components/schemas/ReadyCheck"}},
                    "now": {"type": "string", "format": "date-time"}
                }
            },
            "BuildInfo": {
                "type": "object",
                "properties": {
                    "service": {"type": "string"},
                    "version": {"type": "string"},
                    "commit": {"type": "string"},
                    "date": {"type": "string"},
                    "go": {"type": "string"}
                }
            },
            "ServiceResponse": {
                "type": "object",
                "properties": {
                    "name": {"type": "string"},
                    "instance": {"type": "string", "format": "uuid"},
                    "started": {"type": "string", "format": "date-time"},
                    "uptime": {"type": "integer"}
                }
            },
            "ModuleInfo": {
                "type": "object",
                "properties": {
                    "name": {"type": "string"},
                    "prefix": {"type": "string"},
                    "imports": {"type": "array", "items": {"type": "string"}},
                    "controllers": {"type": "array", "items": {"type": "string"}},
                    "providers": {"type": "array", "items": {"type": "string"}}
                }
            },
            "Graph": {
                "type": "object",
                "properties": {
                    "root": {"type": "string"},
                    "order": {"type": "array", "items": {"type": "string"}},
                    "modules": {"type": "array", "items": {"$ref": "#/components/schemas/ModuleInfo"}}
                }
            },
            "RouteInfo": {
                "type": "object",
                "properties": {
                    "method": {"type": "string"},
                    "pattern": {"type": "string"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "modhost API",
	Description:      "Module host: composed modules, meta and readiness endpoints.",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
