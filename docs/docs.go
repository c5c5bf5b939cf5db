// Package docs holds the OpenAPI description served under /swagger/.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/groups": {
            "post": {
                "tags": ["groups"], "summary": "Create a new group",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/group.CreateGroupRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "get": {
                "tags": ["groups"], "summary": "List the caller's groups", "produces": ["application/json"],
                "parameters": [{"name": "page", "in": "query", "type": "integer"}, {"name": "per_page", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/groups/{groupId}/settlement": {
            "get": {
                "tags": ["settlement"], "summary": "Settlement plan",
                "description": "The payments that settle every balance of the group.",
                "produces": ["application/json"],
                "parameters": [{"name": "groupId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"success": {"type": "boolean"}, "settlement": {"type": "array", "items": {"$ref": "#/definitions/settlement.TransactionResponse"}}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "500": {"description": "Ledger inconsistency", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}/balances": {
            "get": {
                "tags": ["settlement"], "summary": "Group balances", "produces": ["application/json"],
                "parameters": [{"name": "groupId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/expenses": {
            "post": {
                "tags": ["expenses"], "summary": "Record an expense",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/expense.CreateExpenseRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/split-bills": {
            "post": {
                "tags": ["split-bills"], "summary": "Create a split bill",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/splitbill.CreateSplitBillRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/split-bills/{id}/payment-summary": {
            "get": {
                "tags": ["split-bills"], "summary": "Split bill payment summary", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/split-bills/{id}/participants/{userId}/paid": {
            "post": {
                "tags": ["split-bills"], "summary": "Mark a share as paid",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "userId", "in": "path", "required": true, "type": "string"},
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/splitbill.MarkPaidRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/split-bills/{id}/reject": {
            "post": {
                "tags": ["split-bills"], "summary": "Reject a share", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/split-bills/{id}/activity": {
            "get": {
                "tags": ["split-bills"], "summary": "Split bill activity", "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "per_page", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        }
    },
    "definitions": {
        "response.APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "response.APIResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "data": {}, "error": {"$ref": "#/definitions/response.APIError"}}},
        "group.CreateGroupRequest": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}, "description": {"type": "string"}, "member_ids": {"type": "array", "items": {"type": "string"}}}},
        "expense.CreateExpenseRequest": {"type": "object", "properties": {"group_id": {"type": "string"}, "description": {"type": "string"}, "amount": {"type": "string", "example": "12.50"}, "amount_minor": {"type": "integer"}, "category": {"type": "string"}, "split_bill_id": {"type": "string"}}},
        "splitbill.ParticipantInput": {"type": "object", "properties": {"user_id": {"type": "string"}, "percentage": {"type": "string", "example": "33.33"}, "amount": {"type": "string"}, "amount_minor": {"type": "integer"}}},
        "splitbill.CreateSplitBillRequest": {"type": "object", "required": ["group_id", "description", "split_type", "participants"], "properties": {"group_id": {"type": "string"}, "description": {"type": "string"}, "total_amount": {"type": "string", "example": "90.00"}, "total_amount_minor": {"type": "integer"}, "split_type": {"type": "string", "enum": ["EVEN", "PERCENTAGE", "EXACT"]}, "participants": {"type": "array", "items": {"$ref": "#/definitions/splitbill.ParticipantInput"}}}},
        "splitbill.MarkPaidRequest": {"type": "object", "properties": {"method": {"type": "string"}, "note": {"type": "string"}}},
        "settlement.TransactionResponse": {"type": "object", "properties": {"from": {"type": "string"}, "to": {"type": "string"}, "amount": {"type": "integer"}, "amount_display": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "SplitSettle API",
	Description:      "Group debt settlement: balances, settlement plans and split bill payments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
