// Package docs holds the OpenAPI description served at /swagger/doc.json.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a company and its first user", "security": [], "responses": {"201": {"description": "token, user and company"}, "409": {"description": "email or company name taken"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in with email and password", "security": [], "responses": {"200": {"description": "token"}, "401": {"description": "invalid credentials"}}}},
        "/me": {"get": {"tags": ["auth"], "summary": "Current user and company", "responses": {"200": {"description": "user"}}}},
        "/summary": {"get": {"tags": ["documents"], "summary": "Document counts per type and status", "responses": {"200": {"description": "summary"}}}},
        "/companies": {"get": {"tags": ["companies"], "summary": "Search registered companies", "parameters": [{"name": "type", "in": "query", "type": "string", "enum": ["BUYER", "SELLER"]}, {"name": "q", "in": "query", "type": "string"}], "responses": {"200": {"description": "companies"}}}},
        "/{collection}": {
            "get": {"tags": ["documents"], "summary": "List documents visible to the caller", "parameters": [{"$ref": "#/parameters/collection"}, {"name": "status", "in": "query", "type": "string"}, {"name": "q", "in": "query", "type": "string"}], "responses": {"200": {"description": "documents"}}},
            "post": {"tags": ["documents"], "summary": "Create a document", "parameters": [{"$ref": "#/parameters/collection"}], "responses": {"201": {"description": "document"}, "400": {"description": "validation failed"}, "403": {"description": "wrong company type or not the owner of the source"}}}
        },
        "/{collection}/{id}": {
            "get": {"tags": ["documents"], "summary": "Get a document", "parameters": [{"$ref": "#/parameters/collection"}, {"$ref": "#/parameters/id"}], "responses": {"200": {"description": "document"}, "404": {"description": "not found"}}},
            "put": {"tags": ["documents"], "summary": "Edit a document while its status allows", "parameters": [{"$ref": "#/parameters/collection"}, {"$ref": "#/parameters/id"}], "responses": {"200": {"description": "document"}}},
            "delete": {"tags": ["documents"], "summary": "Delete an editable document", "parameters": [{"$ref": "#/parameters/collection"}, {"$ref": "#/parameters/id"}], "responses": {"204": {"description": "deleted"}}}
        },
        "/{collection}/{id}/status": {"patch": {"tags": ["documents"], "summary": "Apply a status action", "parameters": [{"$ref": "#/parameters/collection"}, {"$ref": "#/parameters/id"}], "responses": {"200": {"description": "document"}, "400": {"description": "illegal transition"}}}},
        "/{collection}/{id}/transitions": {"get": {"tags": ["documents"], "summary": "Audit trail", "parameters": [{"$ref": "#/parameters/collection"}, {"$ref": "#/parameters/id"}], "responses": {"200": {"description": "transitions"}}}},
        "/{collection}/{id}/export": {"get": {"tags": ["documents"], "summary": "Download as XLSX", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "parameters": [{"$ref": "#/parameters/collection"}, {"$ref": "#/parameters/id"}], "responses": {"200": {"description": "workbook"}}}},
        "/{collection}/{id}/archive": {"post": {"tags": ["documents"], "summary": "Store the XLSX in blob storage", "parameters": [{"$ref": "#/parameters/collection"}, {"$ref": "#/parameters/id"}], "responses": {"201": {"description": "file name and download url"}}}},
        "/{collection}/{id}/archive/{file}": {"get": {"tags": ["documents"], "summary": "Download an archived XLSX", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "parameters": [{"$ref": "#/parameters/collection"}, {"$ref": "#/parameters/id"}, {"name": "file", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "workbook"}, "404": {"description": "not found"}}}},
        "/purchase-orders/{id}/deliverable": {"get": {"tags": ["documents"], "summary": "Remaining quantities per purchase order line", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "balances"}}}}
    },
    "parameters": {
        "collection": {"name": "collection", "in": "path", "required": true, "type": "string", "enum": ["rfqs", "quotations", "contracts", "purchase-orders", "sales-orders", "delivery-notes", "packing-lists", "invoices"]},
        "id": {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Procurement API",
	Description:      "RFQ to invoice document chain between buyer and seller companies.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
