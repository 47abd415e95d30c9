// Package docs registers the OpenAPI description served by gin-swagger.
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
        "/health": {
            "get": {"tags": ["Health"], "summary": "Health Check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/contracts/{contract_id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Contracts"], "summary": "Get Contract", "parameters": [{"type": "integer", "name": "contract_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/contracts/{contract_id}/terminate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Contracts"], "summary": "Terminate Contract", "parameters": [{"type": "integer", "name": "contract_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/contracts/{contract_id}/invoices": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Invoices"], "summary": "List Contract Invoices", "parameters": [{"type": "integer", "name": "contract_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Invoices"], "summary": "Create Invoice", "consumes": ["application/json"], "parameters": [{"type": "integer", "name": "contract_id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"period": {"type": "string", "example": "2025-02"}}}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/contracts/{contract_id}/schedules": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Schedules"], "summary": "List Contract Schedules", "parameters": [{"type": "integer", "name": "contract_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/contracts/{contract_id}/schedules/generate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Schedules"], "summary": "Generate Contract Schedules", "parameters": [{"type": "integer", "name": "contract_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/contracts/{contract_id}/schedules/export": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Schedules"], "summary": "Export Contract Schedules", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "parameters": [{"type": "integer", "name": "contract_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/schedules/upcoming": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Schedules"], "summary": "Upcoming Schedules", "parameters": [{"type": "integer", "default": 50, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/schedules/due": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Schedules"], "summary": "Due Schedules", "responses": {"200": {"description": "OK"}}}
        },
        "/schedules/{schedule_id}/record_payment": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Schedules"], "summary": "Record Payment", "consumes": ["application/json"], "parameters": [{"type": "integer", "name": "schedule_id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"payment_id": {"type": "integer"}}}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/invoices/{invoice_id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Invoices"], "summary": "Get Invoice", "parameters": [{"type": "integer", "name": "invoice_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/invoices/{invoice_id}/pdf": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Invoices"], "summary": "Download Invoice PDF", "produces": ["application/pdf"], "parameters": [{"type": "integer", "name": "invoice_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/billing/scan": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Jobs"], "summary": "Run billing scan", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/jobs/status": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Jobs"], "summary": "Get background job status", "responses": {"200": {"description": "OK"}}}
        },
        "/audits": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Audits"], "summary": "List audit logs of one entity", "parameters": [{"name": "entity", "in": "query", "required": true, "type": "string"}, {"name": "entity_id", "in": "query", "required": true, "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Fintera Rentals API",
	Description:      "Rent schedule and invoice billing engine for apartment rentals",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
