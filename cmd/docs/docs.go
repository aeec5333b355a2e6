// Package docs registers the OpenAPI description of the autoledger HTTP API.
// Regenerate with: swag init -g cmd/autoledger/main.go -o cmd/docs
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
        "/events/{sourceType}/{sourceID}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Post a business event to the ledger",
                "parameters": [
                    {"type": "string", "name": "sourceType", "in": "path", "required": true},
                    {"type": "string", "name": "sourceID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Entry posted now or earlier"},
                    "202": {"description": "Accepted; posting failed and was logged"},
                    "400": {"description": "Malformed request"}
                }
            }
        },
        "/outbox": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["outbox"], "summary": "List queued postings", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["outbox"], "summary": "Queue a source record for posting", "responses": {"202": {"description": "Accepted"}}}
        },
        "/outbox/stats": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["outbox"], "summary": "Count queued postings by status", "responses": {"200": {"description": "OK"}}}
        },
        "/outbox/sync": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["outbox"], "summary": "Process the posting queue", "responses": {"200": {"description": "OK"}}}
        },
        "/outbox/{itemID}/retry": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["outbox"], "summary": "Retry a failed posting", "responses": {"200": {"description": "OK"}, "404": {"description": "Item not found"}}}
        },
        "/reports/trial-balance": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Get trial balance", "responses": {"200": {"description": "OK"}}}
        },
        "/reports/unreconciled": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "List source records missing from the ledger", "responses": {"200": {"description": "OK"}}}
        },
        "/reports/unbalanced": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "List stored entries that do not balance", "responses": {"200": {"description": "OK"}}}
        },
        "/accounts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "List the chart of accounts", "responses": {"200": {"description": "OK"}}}
        },
        "/accounts/{code}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Rename or (de)activate an account", "responses": {"200": {"description": "OK"}, "404": {"description": "Account not found"}}}
        },
        "/accounts/{code}/ledger": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "List an account's postings", "responses": {"200": {"description": "OK"}}}
        },
        "/entries/{entryID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["entries"], "summary": "Get a journal entry", "responses": {"200": {"description": "OK"}, "404": {"description": "Entry not found"}}}
        },
        "/entries/{entryID}/reverse": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["entries"], "summary": "Reverse a journal entry", "responses": {"200": {"description": "Already reversed"}, "201": {"description": "Reversal posted"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Autoledger API",
	Description:      "Automatic double-entry posting of business events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
