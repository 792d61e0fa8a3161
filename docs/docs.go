// Package docs registers the OpenAPI document of the numbering API with swag
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
        "/api/v1/bast/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["BAST"],
                "summary": "Generate BAST number",
                "parameters": [
                    {"type": "string", "description": "Client-chosen key for replay-safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"description": "BAST record metadata", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.GenerateBastRequest"}}
                ],
                "responses": {
                    "201": {"description": "BAST number generated", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "409": {"description": "Number collision or request in progress", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/bast/records": {
            "get": {
                "produces": ["application/json"],
                "tags": ["BAST"],
                "summary": "List BAST records",
                "parameters": [
                    {"type": "integer", "name": "year", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "BAST records", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/bast/records/export": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["BAST"],
                "summary": "Export BAST records",
                "parameters": [
                    {"type": "integer", "name": "year", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Workbook", "schema": {"type": "file"}}
                }
            }
        },
        "/api/v1/bast/update": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["BAST"],
                "summary": "Update BAST record",
                "parameters": [
                    {"description": "Corrected record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateBastRequest"}}
                ],
                "responses": {
                    "200": {"description": "BAST record updated", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Validation error or malformed stored number", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "409": {"description": "Re-rendered number already exists", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/bast/counters/{year}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Counters"],
                "summary": "Get BAST counter",
                "parameters": [
                    {"type": "integer", "name": "year", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Counter", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid year", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/contract/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Contracts"],
                "summary": "Generate contract number",
                "parameters": [
                    {"type": "string", "description": "Client-chosen key for replay-safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Contract record metadata", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.GenerateContractRequest"}}
                ],
                "responses": {
                    "201": {"description": "Contract number generated", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "409": {"description": "Number collision or request in progress", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/contract/records": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Contracts"],
                "summary": "List contract records",
                "parameters": [
                    {"type": "integer", "name": "year", "in": "query"},
                    {"enum": ["621", "622"], "type": "string", "name": "location_code", "in": "query"},
                    {"enum": ["BM", "BM-KONS"], "type": "string", "name": "work_type", "in": "query"},
                    {"enum": ["SP", "SPK"], "type": "string", "name": "procurement_type", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Contract records", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/contract/records/export": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Contracts"],
                "summary": "Export contract records",
                "parameters": [
                    {"type": "integer", "name": "year", "in": "query"},
                    {"enum": ["621", "622"], "type": "string", "name": "location_code", "in": "query"},
                    {"enum": ["BM", "BM-KONS"], "type": "string", "name": "work_type", "in": "query"},
                    {"enum": ["SP", "SPK"], "type": "string", "name": "procurement_type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Workbook", "schema": {"type": "file"}}
                }
            }
        },
        "/api/v1/contract/update": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Contracts"],
                "summary": "Update contract record",
                "parameters": [
                    {"description": "Corrected record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateContractRequest"}}
                ],
                "responses": {
                    "200": {"description": "Contract record updated", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Validation error or malformed stored number", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "409": {"description": "Re-rendered number already exists", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/contract/counters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Counters"],
                "summary": "Get contract counter",
                "parameters": [
                    {"enum": ["621", "622"], "type": "string", "name": "location_code", "in": "query", "required": true},
                    {"enum": ["BM", "BM-KONS"], "type": "string", "name": "work_type", "in": "query", "required": true},
                    {"enum": ["SP", "SPK"], "type": "string", "name": "procurement_type", "in": "query", "required": true},
                    {"type": "integer", "name": "year", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Counter", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid category or year", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "Service is healthy", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {}
            }
        },
        "dto.GenerateBastRequest": {
            "type": "object",
            "required": ["bast_date", "project_name"],
            "properties": {
                "project_name": {"type": "string", "maxLength": 500},
                "bast_date": {"type": "string", "example": "2025-03-14"},
                "budget": {"type": "string"},
                "company_name": {"type": "string"}
            }
        },
        "dto.UpdateBastRequest": {
            "type": "object",
            "required": ["id", "bast_date", "project_name"],
            "properties": {
                "id": {"type": "integer"},
                "project_name": {"type": "string", "maxLength": 500},
                "bast_date": {"type": "string", "example": "2025-03-14"},
                "budget": {"type": "string"},
                "company_name": {"type": "string"}
            }
        },
        "dto.GenerateContractRequest": {
            "type": "object",
            "required": ["contract_date", "location", "procurement_type", "project_name", "work_type"],
            "properties": {
                "project_name": {"type": "string", "maxLength": 500},
                "contract_date": {"type": "string", "example": "2025-03-14"},
                "location": {"type": "string", "enum": ["621", "622"]},
                "work_type": {"type": "string", "enum": ["BM", "BM-KONS"]},
                "procurement_type": {"type": "string", "enum": ["SP", "SPK"]},
                "budget": {"type": "string"},
                "company_name": {"type": "string"}
            }
        },
        "dto.UpdateContractRequest": {
            "type": "object",
            "required": ["id", "contract_date", "location", "procurement_type", "project_name", "work_type"],
            "properties": {
                "id": {"type": "integer"},
                "project_name": {"type": "string", "maxLength": 500},
                "contract_date": {"type": "string", "example": "2025-03-14"},
                "location": {"type": "string", "enum": ["621", "622"]},
                "work_type": {"type": "string", "enum": ["BM", "BM-KONS"]},
                "procurement_type": {"type": "string", "enum": ["SP", "SPK"]},
                "budget": {"type": "string"},
                "company_name": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DISPUPR Document Numbering API",
	Description:      "Issues sequential BAST and contract document numbers backed by persisted counters.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
