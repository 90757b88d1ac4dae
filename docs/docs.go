// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/local/main.go -o docs
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
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"health"
				],
				"summary": "Health check",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.HealthResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/handlers.HealthResponse"
						}
					}
				}
			}
		},
		"/session-keys": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"session-keys"
				],
				"summary": "Issue a session key",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.IssueSessionKeyRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handlers.SessionKeyResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"session-keys"
				],
				"summary": "List session keys",
				"parameters": [
					{
						"name": "status",
						"in": "query",
						"type": "string",
						"required": false
					},
					{
						"name": "limit",
						"in": "query",
						"type": "integer",
						"required": false
					},
					{
						"name": "page",
						"in": "query",
						"type": "integer",
						"required": false
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"additionalProperties": true
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/session-keys/{grant_id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"session-keys"
				],
				"summary": "Get a session key",
				"parameters": [
					{
						"name": "grant_id",
						"in": "path",
						"type": "string",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.SessionKeyResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"session-keys"
				],
				"summary": "Revoke a session key",
				"parameters": [
					{
						"name": "grant_id",
						"in": "path",
						"type": "string",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.SessionKeyResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/session-keys/{grant_id}/authorize": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"session-keys"
				],
				"summary": "Authorize an operation under a session key",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "grant_id",
						"in": "path",
						"type": "string",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.AuthorizeOperationRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.AuthorizeOperationResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.DenialResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/session-keys/{grant_id}/activity": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"session-keys"
				],
				"summary": "List a session key's activity",
				"parameters": [
					{
						"name": "grant_id",
						"in": "path",
						"type": "string",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"additionalProperties": true
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/gas-policies": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"gas-policies"
				],
				"summary": "Create a gas policy",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.CreateGasPolicyRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handlers.GasPolicyResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"gas-policies"
				],
				"summary": "List gas policies",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"additionalProperties": true
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/gas-policies/{policy_id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"gas-policies"
				],
				"summary": "Get a gas policy",
				"parameters": [
					{
						"name": "policy_id",
						"in": "path",
						"type": "string",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.GasPolicyResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"produces": [
					"application/json"
				],
				"tags": [
					"gas-policies"
				],
				"summary": "Update a gas policy",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "policy_id",
						"in": "path",
						"type": "string",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.UpdateGasPolicyRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.GasPolicyResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/multisig": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"multisig"
				],
				"summary": "Create a multisig config",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.InitMultisigRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handlers.MultisigConfigResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"multisig"
				],
				"summary": "Get a multisig config",
				"parameters": [
					{
						"name": "account",
						"in": "query",
						"type": "string",
						"required": false
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.MultisigConfigResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/multisig/proposals": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"multisig"
				],
				"summary": "Create a proposal",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.CreateProposalRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handlers.ProposalResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"multisig"
				],
				"summary": "List proposals",
				"parameters": [
					{
						"name": "account",
						"in": "query",
						"type": "string",
						"required": false
					},
					{
						"name": "status",
						"in": "query",
						"type": "string",
						"required": false
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"additionalProperties": true
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/multisig/proposals/{proposal_id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"multisig"
				],
				"summary": "Get a proposal",
				"parameters": [
					{
						"name": "proposal_id",
						"in": "path",
						"type": "string",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.ProposalResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/multisig/proposals/{proposal_id}/sign": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"multisig"
				],
				"summary": "Sign a proposal",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "proposal_id",
						"in": "path",
						"type": "string",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.SignProposalRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.ProposalResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/multisig/proposals/{proposal_id}/execute": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"multisig"
				],
				"summary": "Execute a proposal",
				"parameters": [
					{
						"name": "proposal_id",
						"in": "path",
						"type": "string",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.ReceiptResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/multisig/proposals/{proposal_id}/cancel": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"multisig"
				],
				"summary": "Cancel a proposal",
				"parameters": [
					{
						"name": "proposal_id",
						"in": "path",
						"type": "string",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.ProposalResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handlers.AuthorizeOperationRequest": {
			"type": "object"
		},
		"handlers.AuthorizeOperationResponse": {
			"type": "object"
		},
		"handlers.CreateGasPolicyRequest": {
			"type": "object"
		},
		"handlers.CreateProposalRequest": {
			"type": "object"
		},
		"handlers.DenialResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"code": {
					"type": "string"
				},
				"authorized": {
					"type": "boolean"
				},
				"grant_id": {
					"type": "string"
				},
				"detail": {
					"type": "string"
				},
				"checked_capabilities": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"gas_policy_id": {
					"type": "string"
				}
			}
		},
		"handlers.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"code": {
					"type": "string"
				}
			}
		},
		"handlers.GasPolicyResponse": {
			"type": "object"
		},
		"handlers.HealthResponse": {
			"type": "object"
		},
		"handlers.InitMultisigRequest": {
			"type": "object"
		},
		"handlers.IssueSessionKeyRequest": {
			"type": "object"
		},
		"handlers.MultisigConfigResponse": {
			"type": "object"
		},
		"handlers.ProposalResponse": {
			"type": "object"
		},
		"handlers.ReceiptResponse": {
			"type": "object"
		},
		"handlers.SessionKeyResponse": {
			"type": "object"
		},
		"handlers.SignProposalRequest": {
			"type": "object"
		},
		"handlers.UpdateGasPolicyRequest": {
			"type": "object"
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
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Wallet Policy API",
	Description:      "Session keys, gas policies and multisig approvals for smart wallets",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
