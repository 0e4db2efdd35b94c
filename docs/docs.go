package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Carrier Sales Dashboard",
    "description": "Read-only dashboard views over the carrier sales API",
    "version": "1.0"
  },
  "basePath": "/",
  "securityDefinitions": {
    "DashboardKey": {"type": "apiKey", "in": "header", "name": "X-Dashboard-Key"}
  },
  "paths": {
    "/healthz": {
      "get": {"tags": ["health"], "summary": "Service health", "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}, "503": {"description": "Upstream unavailable"}}}
    },
    "/api/dashboard/metrics": {
      "get": {"tags": ["dashboard"], "summary": "Dashboard metrics", "produces": ["application/json"],
        "security": [{"DashboardKey": []}],
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Metrics"}}, "502": {"description": "Failed to fetch metrics"}}}
    },
    "/api/dashboard/loads": {
      "get": {"tags": ["dashboard"], "summary": "Search loads", "produces": ["application/json"],
        "security": [{"DashboardKey": []}],
        "parameters": [
          {"name": "origin", "in": "query", "type": "string"},
          {"name": "destination", "in": "query", "type": "string"},
          {"name": "equipment_type", "in": "query", "type": "string"},
          {"name": "pickup_from", "in": "query", "type": "string"},
          {"name": "pickup_to", "in": "query", "type": "string"},
          {"name": "max_results", "in": "query", "type": "integer", "minimum": 1, "maximum": 100}
        ],
        "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Load"}}}, "400": {"description": "Validation failed"}, "502": {"description": "Failed to fetch loads"}}}
    },
    "/api/dashboard/call-sessions": {
      "get": {"tags": ["dashboard"], "summary": "Recent call sessions", "produces": ["application/json"],
        "security": [{"DashboardKey": []}],
        "parameters": [{"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 500}],
        "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CallSession"}}}, "400": {"description": "Validation failed"}, "502": {"description": "Failed to fetch call sessions"}}}
    },
    "/api/dashboard/overview": {
      "get": {"tags": ["dashboard"], "summary": "Dashboard overview", "produces": ["application/json"],
        "security": [{"DashboardKey": []}],
        "responses": {"200": {"description": "Each panel carries data, error and updated_at"}}}
    }
  },
  "definitions": {
    "models.Metrics": {"type": "object", "properties": {
      "total_calls": {"type": "integer"}, "conversion_rate": {"type": "number"},
      "avg_negotiation_rounds": {"type": "number"},
      "outcomes": {"type": "object", "additionalProperties": {"type": "integer"}},
      "sentiment": {"type": "object", "additionalProperties": {"type": "integer"}},
      "total_revenue": {"type": "number"}}},
    "models.Load": {"type": "object", "properties": {
      "load_id": {"type": "string"}, "origin": {"type": "string"}, "destination": {"type": "string"},
      "pickup_datetime": {"type": "string"}, "delivery_datetime": {"type": "string"},
      "equipment_type": {"type": "string"}, "loadboard_rate": {"type": "number"},
      "notes": {"type": "string"}, "weight": {"type": "number"}, "commodity_type": {"type": "string"},
      "num_of_pieces": {"type": "integer"}, "miles": {"type": "number"}, "dimensions": {"type": "string"},
      "score": {"type": "number"}}},
    "models.CallSession": {"type": "object", "properties": {
      "session_id": {"type": "string"}, "carrier_mc": {"type": "string"}, "carrier_name": {"type": "string"},
      "load_id": {"type": "string"}, "initial_rate": {"type": "number"},
      "negotiated_rate": {"type": "number", "x-nullable": true}, "negotiation_rounds": {"type": "integer"},
      "outcome": {"type": "string", "enum": ["accepted", "rejected", "negotiating"]},
      "sentiment": {"type": "string", "enum": ["positive", "negative", "neutral"]},
      "call_duration": {"type": "integer"}, "created_at": {"type": "string"}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
