// Package docs registers the questionflow OpenAPI document with swag.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler
// annotations.
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
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in as host or admin",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LoginResponse"}},
                          "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Revoke the caller's host token", "security": [{"Bearer": []}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LogoutResponse"}}}}},
        "/auth/admin-logout": {"post": {"tags": ["auth"], "summary": "Revoke the caller's admin token", "security": [{"Bearer": []}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LogoutResponse"}}}}},
        "/questionnaires": {
            "get": {"tags": ["questionnaires"], "summary": "List the caller's questionnaires", "security": [{"Bearer": []}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["questionnaires"], "summary": "Create a questionnaire", "security": [{"Bearer": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.QuestionnaireRequest"}}],
                "responses": {"201": {"description": "Created"}}}},
        "/questionnaires/{id}": {
            "get": {"tags": ["questionnaires"], "summary": "Load a questionnaire graph", "security": [{"Bearer": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}},
            "put": {"tags": ["questionnaires"], "summary": "Change title and description", "security": [{"Bearer": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true},
                               {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.QuestionnaireRequest"}}],
                "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["questionnaires"], "summary": "Delete a questionnaire", "security": [{"Bearer": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}},
        "/questionnaires/{id}/nodes": {"post": {"tags": ["graph"], "summary": "Place a question node", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
            "responses": {"201": {"description": "Created"}}}},
        "/questionnaires/{id}/nodes/{nodeId}": {"delete": {"tags": ["graph"], "summary": "Delete a node and its edges", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "nodeId", "in": "path", "required": true}],
            "responses": {"204": {"description": "No Content"}}}},
        "/questionnaires/{id}/nodes/{nodeId}/position": {"put": {"tags": ["graph"], "summary": "Move a node on the canvas", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "nodeId", "in": "path", "required": true}],
            "responses": {"204": {"description": "No Content"}}}},
        "/questionnaires/{id}/nodes/{nodeId}/editor": {"post": {"tags": ["editor"], "summary": "Open an editor session on a node", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "nodeId", "in": "path", "required": true}],
            "responses": {"201": {"description": "Created"}}}},
        "/questionnaires/{id}/edges": {"post": {"tags": ["graph"], "summary": "Connect two nodes", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
            "responses": {"201": {"description": "Created"}}}},
        "/questionnaires/{id}/edges/{edgeId}": {"delete": {"tags": ["graph"], "summary": "Remove an edge", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "edgeId", "in": "path", "required": true}],
            "responses": {"204": {"description": "No Content"}}}},
        "/editor/{sessionId}": {
            "get": {"tags": ["editor"], "summary": "Read an open editor session", "security": [{"Bearer": []}],
                "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["editor"], "summary": "Delete the node being edited", "security": [{"Bearer": []}],
                "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}},
        "/editor/{sessionId}/question": {"put": {"tags": ["editor"], "summary": "Set the question text", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}}}},
        "/editor/{sessionId}/type": {"put": {"tags": ["editor"], "summary": "Change the question type", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}}}},
        "/editor/{sessionId}/required": {"put": {"tags": ["editor"], "summary": "Set the required flag", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}}}},
        "/editor/{sessionId}/options": {"post": {"tags": ["editor"], "summary": "Append an empty option", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}}}},
        "/editor/{sessionId}/options/{index}": {
            "put": {"tags": ["editor"], "summary": "Set the text, score or annotation of one option", "security": [{"Bearer": []}],
                "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}, {"type": "integer", "name": "index", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["editor"], "summary": "Remove one option; the last option is never removed", "security": [{"Bearer": []}],
                "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}, {"type": "integer", "name": "index", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}},
        "/editor/{sessionId}/commit": {"post": {"tags": ["editor"], "summary": "Validate the draft and save it into the questionnaire", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}},
        "/editor/{sessionId}/cancel": {"post": {"tags": ["editor"], "summary": "Discard the draft", "security": [{"Bearer": []}],
            "parameters": [{"type": "string", "name": "sessionId", "in": "path", "required": true}],
            "responses": {"204": {"description": "No Content"}}}}
    },
    "definitions": {
        "handler.ErrorResponse": {"type": "object", "properties": {
            "error": {"type": "string"}, "code": {"type": "string"}, "field": {"type": "string"}, "index": {"type": "integer"}}},
        "handler.QuestionnaireRequest": {"type": "object", "properties": {
            "title": {"type": "string"}, "description": {"type": "string"}}},
        "model.LoginRequest": {"type": "object", "properties": {
            "username": {"type": "string"}, "password": {"type": "string"}}},
        "model.LoginResponse": {"type": "object", "properties": {
            "token": {"type": "string"}, "hostId": {"type": "string"}, "role": {"type": "string"}, "expiresAt": {"type": "integer"}}},
        "model.LogoutResponse": {"type": "object", "properties": {
            "status": {"type": "string"}, "message": {"type": "string"}, "statusCode": {"type": "integer"}, "error": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "questionflow API",
	Description:      "Branching questionnaire editor backend",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
