// Package docs registers the authd OpenAPI document with swag.
//
// Regenerate with `swag init -g cmd/authd/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

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
        "/api/v1/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an app user",
                "parameters": [
                    {"type": "string", "description": "Application API key", "name": "X-API-Key", "in": "header"},
                    {"description": "Registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.authResponse"}}
                }
            }
        },
        "/api/v1/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in an app user",
                "parameters": [
                    {"type": "string", "description": "Application API key", "name": "X-API-Key", "in": "header"},
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.authResponse"}}
                }
            }
        },
        "/api/v1/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify a session",
                "parameters": [
                    {"description": "Session token", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.sessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.authResponse"}}
                }
            }
        },
        "/api/v1/logout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "parameters": [
                    {"description": "Session token", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.sessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}}
                }
            }
        },
        "/console/v1/applications": {
            "get": {
                "security": [{"ConsoleSession": []}],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "List applications visible to the signed-in account",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            },
            "post": {
                "security": [{"ConsoleSession": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Create an application",
                "parameters": [
                    {"description": "Application settings", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.dataResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.dataResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.dataResponse"}}
                }
            }
        },
        "/console/v1/applications/{id}": {
            "patch": {
                "security": [{"ConsoleSession": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Update application settings",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateApplicationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.dataResponse"}}
                }
            }
        },
        "/console/v1/applications/{id}/rotate-key": {
            "post": {
                "security": [{"ConsoleSession": []}],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Rotate an application's API key",
                "parameters": [{"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        },
        "/console/v1/applications/{id}/licenses": {
            "post": {
                "security": [{"ConsoleSession": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Generate license keys",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"description": "Batch settings", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createLicensesRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        },
        "/console/v1/applications/{id}/users/{userID}": {
            "delete": {
                "security": [{"ConsoleSession": []}],
                "tags": ["console"],
                "summary": "Delete an app user and release their license slot",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "App user ID", "name": "userID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        },
        "/console/v1/applications/{id}/users/{userID}/pause": {
            "post": {
                "security": [{"ConsoleSession": []}],
                "tags": ["console"],
                "summary": "Pause an app user and end their sessions",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "App user ID", "name": "userID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        },
        "/console/v1/applications/{id}/users/{userID}/unpause": {
            "post": {
                "security": [{"ConsoleSession": []}],
                "tags": ["console"],
                "summary": "Unpause an app user",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "App user ID", "name": "userID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        },
        "/console/v1/applications/{id}/users/{userID}/reset-hwid": {
            "post": {
                "security": [{"ConsoleSession": []}],
                "tags": ["console"],
                "summary": "Clear an app user's bound hardware id",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "App user ID", "name": "userID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        },
        "/console/v1/applications/{id}/blacklist": {
            "get": {
                "security": [{"ConsoleSession": []}],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "List an application's active block rules",
                "parameters": [{"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            },
            "post": {
                "security": [{"ConsoleSession": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Add an application block rule",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"description": "Rule", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.blacklistRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.dataResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.dataResponse"}}
                }
            }
        },
        "/console/v1/applications/{id}/blacklist/{entryID}": {
            "delete": {
                "security": [{"ConsoleSession": []}],
                "tags": ["console"],
                "summary": "Deactivate an application block rule",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Rule ID", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        },
        "/console/v1/applications/{id}/activity": {
            "get": {
                "security": [{"ConsoleSession": []}],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "List recent activity for an application",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Page size (default 50, max 500)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        },
        "/console/v1/blacklist": {
            "post": {
                "security": [{"ConsoleSession": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Add a platform-wide block rule",
                "parameters": [
                    {"description": "Rule", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.blacklistRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.dataResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.dataResponse"}}
                }
            }
        },
        "/console/v1/blacklist/{entryID}": {
            "delete": {
                "security": [{"ConsoleSession": []}],
                "tags": ["console"],
                "summary": "Deactivate a platform-wide block rule",
                "parameters": [{"type": "string", "description": "Rule ID", "name": "entryID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dataResponse"}}}
            }
        }
    },
    "definitions": {
        "domain.Messages": {
            "type": "object",
            "properties": {
                "account_disabled": {"type": "string"},
                "account_expired": {"type": "string"},
                "account_paused": {"type": "string"},
                "hwid_mismatch": {"type": "string"},
                "login_failed": {"type": "string"},
                "login_success": {"type": "string"},
                "version_mismatch": {"type": "string"}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "session_token": {"type": "string"},
                "success": {"type": "boolean"},
                "user_id": {"type": "string"}
            }
        },
        "handler.blacklistRequest": {
            "type": "object",
            "required": ["type", "value"],
            "properties": {
                "reason": {"type": "string", "maxLength": 256},
                "type": {"type": "string", "enum": ["ip", "username", "email", "hwid"]},
                "value": {"type": "string", "maxLength": 256}
            }
        },
        "handler.createApplicationRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "hwid_lock": {"type": "boolean"},
                "messages": {"$ref": "#/definitions/domain.Messages"},
                "name": {"type": "string", "maxLength": 128},
                "version": {"type": "string", "maxLength": 64}
            }
        },
        "handler.createLicensesRequest": {
            "type": "object",
            "required": ["count", "max_users", "validity_days"],
            "properties": {
                "count": {"type": "integer", "maximum": 500, "minimum": 1},
                "max_users": {"type": "integer", "minimum": 1},
                "validity_days": {"type": "integer", "minimum": 1}
            }
        },
        "handler.dataResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "success": {"type": "boolean"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "api_key": {"type": "string"},
                "hwid": {"type": "string", "maxLength": 256},
                "password": {"type": "string", "maxLength": 72},
                "username": {"type": "string", "maxLength": 64},
                "version": {"type": "string", "maxLength": 64}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["license_key", "password", "username"],
            "properties": {
                "api_key": {"type": "string"},
                "email": {"type": "string", "maxLength": 254},
                "hwid": {"type": "string", "maxLength": 256},
                "license_key": {"type": "string", "maxLength": 64},
                "password": {"type": "string", "maxLength": 72},
                "username": {"type": "string", "maxLength": 64}
            }
        },
        "handler.sessionRequest": {
            "type": "object",
            "properties": {
                "session_token": {"type": "string"}
            }
        },
        "handler.updateApplicationRequest": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "hwid_lock": {"type": "boolean"},
                "messages": {"$ref": "#/definitions/domain.Messages"},
                "name": {"type": "string", "maxLength": 128},
                "version": {"type": "string", "maxLength": 64}
            }
        }
    },
    "securityDefinitions": {
        "ConsoleSession": {
            "description": "Bearer console token; browsers send the console_session cookie instead.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "authd API",
	Description:      "Multi-tenant authentication decision engine: end-user register, login, session verify and logout, plus the owner console.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
