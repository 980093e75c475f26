package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "sgcctl monitor",
        "description": "Read-only view of the SGC Education performance feeds collected by the console",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Monitor", "description": "Performance snapshot polled from the backend"},
        {"name": "Ops", "description": "Liveness, readiness and console metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Ready once a performance snapshot exists",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "No successful poll yet"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics of the console process",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["Ops"],
                "summary": "Backend request counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StatsEnvelope"}}
                }
            }
        },
        "/performance": {
            "get": {
                "tags": ["Monitor"],
                "summary": "Latest performance snapshot",
                "parameters": [
                    {"name": "refresh", "in": "query", "type": "boolean", "description": "Poll the five feeds before answering"}
                ],
                "responses": {
                    "200": {
                        "description": "OK. X-Poll-Error is set when the refresh failed and the previous snapshot is returned",
                        "schema": {"$ref": "#/definitions/PerformanceEnvelope"}
                    },
                    "503": {"description": "No snapshot yet", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Performance": {
            "type": "object",
            "properties": {
                "health": {"type": "object"},
                "database": {"type": "object"},
                "sessions": {"type": "object"},
                "errors": {"type": "object"},
                "metrics": {"type": "object"},
                "fetchedAt": {"type": "string", "format": "date-time"}
            }
        },
        "Stats": {
            "type": "object",
            "properties": {
                "requests": {"type": "integer"},
                "errors": {"type": "integer"},
                "discarded": {"type": "integer"}
            }
        },
        "PerformanceEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/Performance"}
            }
        },
        "StatsEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"$ref": "#/definitions/Stats"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
