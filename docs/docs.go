// Package docs is the hand-maintained stand-in for what `swag init` would
// generate from the annotations in internal/httpapi and internal/metrics:
// a registered swag.Spec plus the OpenAPI template those annotations
// describe. internal/metrics/server.go imports this package for its
// init-time swag.Register side effect so /docs/*any can serve it.
package docs

import "github.com/swaggo/swag"

// SwaggerInfo mirrors the struct swag generates: the handful of fields
// gin-swagger's WrapHandler substitutes into doc.json's templated host/
// basePath/schemes at request time.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:9090",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Anchor API",
	Description:      "Content-addressed snapshot store with auth/session core.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Password login",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/ssh-login": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "SSH challenge/response login",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/repos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "List repositories",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "Create a repository",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Forbidden"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/repos/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "Get repository metadata",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/user/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get the authenticated user's profile",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {}
}`
