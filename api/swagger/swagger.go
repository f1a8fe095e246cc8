package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Healthy School Tracker API",
        "description": "Gamification tracker for a school healthy-choices program",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Student login and teacher unlock"},
        {"name": "Posts", "description": "Healthy food submissions"},
        {"name": "Profile", "description": "Student points, level and badge wall"},
        {"name": "Stations", "description": "Activity station questions and claims"},
        {"name": "Leaderboard", "description": "Class-wide ranking"},
        {"name": "Transfer", "description": "Document export, import, reset and reports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Student login or registration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/teacher": {
            "post": {
                "tags": ["Auth"],
                "summary": "Unlock the teacher dashboard",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherUnlockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/posts": {
            "post": {
                "tags": ["Posts"],
                "summary": "Submit a healthy food post with photo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "food_type", "in": "formData", "required": true, "type": "string"},
                    {"name": "from_cafeteria", "in": "formData", "type": "boolean"},
                    {"name": "note", "in": "formData", "type": "string"},
                    {"name": "image", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile": {
            "get": {
                "tags": ["Profile"],
                "summary": "Current student profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/badges": {
            "get": {
                "tags": ["Profile"],
                "summary": "Badge wall for the current student",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/posts": {
            "get": {
                "tags": ["Posts"],
                "summary": "Submission history, newest first",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stations/{code}": {
            "get": {
                "tags": ["Stations"],
                "summary": "Station question (answer withheld)",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Stations"],
                "summary": "Create or replace a station",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertStationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stations/{code}/claims": {
            "post": {
                "tags": ["Stations"],
                "summary": "Answer a station question and claim its points",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClaimRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stations": {
            "get": {
                "tags": ["Stations"],
                "summary": "List stations with answers (teacher only)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Students ranked by points",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/transfer/export": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Export the full document as JSON",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/transfer/import": {
            "post": {
                "tags": ["Transfer"],
                "summary": "Replace the document from an exported JSON file",
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Invalid document", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/transfer/reset": {
            "post": {
                "tags": ["Transfer"],
                "summary": "Reset the document to its seeded defaults",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/transfer/report": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Download a progress report",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "class": {"type": "string"},
                "section": {"type": "string"},
                "school_code": {"type": "string"}
            },
            "required": ["name", "class"]
        },
        "TeacherUnlockRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"}
            },
            "required": ["password"]
        },
        "UpsertStationRequest": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "answer": {"type": "string"},
                "points": {"type": "integer"}
            },
            "required": ["question", "answer"]
        },
        "ClaimRequest": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"}
            },
            "required": ["answer"]
        },
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "class": {"type": "string"},
                "section": {"type": "string"},
                "school_code": {"type": "string"},
                "points": {"type": "integer"},
                "post_count": {"type": "integer"},
                "level": {"type": "integer"},
                "badges": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
