package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Instructor Companion API",
        "description": "Read-only instructor activity dashboard: teaching stats, class rosters and payment request status.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Dashboard", "description": "Instructor activity aggregation"},
        {"name": "Operations", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check (pings the platform database)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Prometheus exposition format"}
                }
            }
        },
        "/api/v1/instructors/{instructorId}/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Instructor dashboard",
                "description": "Lifetime stats, upcoming and completed classes with enrollment and payment status. Computed fresh on every call.",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "instructorId", "in": "path", "required": true, "type": "integer", "format": "int64"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DashboardEnvelope"}},
                    "400": {"description": "Invalid instructor id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Link": {
            "type": "object",
            "properties": {
                "purpose": {"type": "string", "enum": ["roster", "log_hours", "reimburse", "payment_status", "feedback", "emergency_procedures", "handbook"]},
                "title": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "ClassRow": {
            "type": "object",
            "properties": {
                "eventId": {"type": "integer", "format": "int64"},
                "date": {"type": "string", "example": "Fri, May 3, 2024 at 2:30pm"},
                "startsAt": {"type": "string", "format": "date-time"},
                "title": {"type": "string"},
                "enrolled": {"type": "string", "example": "5 / 12"},
                "paymentStatus": {"type": "string", "example": "Paid (2), Draft (1)"},
                "links": {"type": "array", "items": {"$ref": "#/definitions/Link"}}
            }
        },
        "ClassSection": {
            "type": "object",
            "properties": {
                "caption": {"type": "string"},
                "emptyMessage": {"type": "string"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/ClassRow"}}
            }
        },
        "InstructorStats": {
            "type": "object",
            "properties": {
                "classesCount": {"type": "integer"},
                "studentsCount": {"type": "integer"},
                "averageRating": {"type": "number", "x-nullable": true},
                "showRating": {"type": "boolean"}
            }
        },
        "InstructorDashboard": {
            "type": "object",
            "properties": {
                "instructorId": {"type": "integer", "format": "int64"},
                "stats": {"$ref": "#/definitions/InstructorStats"},
                "toolkit": {"type": "array", "items": {"$ref": "#/definitions/Link"}},
                "profileMissing": {"type": "boolean"},
                "profileLink": {"type": "string"},
                "upcoming": {"$ref": "#/definitions/ClassSection"},
                "completed": {"$ref": "#/definitions/ClassSection"},
                "degraded": {"type": "array", "items": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "DashboardEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/InstructorDashboard"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "request_id": {"type": "string"},
                        "processing_time_ms": {"type": "integer"},
                        "degraded": {"type": "array", "items": {"type": "string"}}
                    }
                }
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
