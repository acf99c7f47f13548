package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Planner API",
        "description": "Student dashboard backend: assignments, courses, study sessions and workload recommendations.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Dashboard", "description": "Aggregated planner overview and workload analysis"},
        {"name": "Assignments", "description": "Assignment lifecycle and export"},
        {"name": "Courses", "description": "Enrolled courses"},
        {"name": "Recommendations", "description": "Workload recommendations"},
        {"name": "Planner", "description": "Study sessions and personal commitments"},
        {"name": "Profile", "description": "Profile and sign out"}
    ],
    "paths": {
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard overview",
                "description": "Loads assignments, courses and pending recommendations concurrently. A failed collection is returned empty and listed in meta.failed_collections.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Record store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/analyze": {
            "post": {
                "tags": ["Dashboard"],
                "summary": "Request workload analysis",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/AnalysisRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Analysis failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Analysis disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "in_progress", "completed"]},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Assignments"],
                "summary": "Update assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Delete assignment",
                "description": "Deletes only when confirmed through ?confirm=true or the X-Confirm-Delete header; otherwise nothing changes.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "confirm", "in": "query", "type": "boolean"},
                    {"name": "X-Confirm-Delete", "in": "header", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/advance": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Advance assignment status",
                "description": "pending moves to in_progress; any other status moves to completed.",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/export": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Export assignments",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ExportRequest"}},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Download export",
                "security": [],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Export expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}": {
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "confirm", "in": "query", "type": "boolean"},
                    {"name": "X-Confirm-Delete", "in": "header", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/recommendations": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "List pending recommendations",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/recommendations/{id}/dismiss": {
            "post": {
                "tags": ["Recommendations"],
                "summary": "Dismiss recommendation",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/recommendations/{id}/accept": {
            "post": {
                "tags": ["Recommendations"],
                "summary": "Accept recommendation",
                "description": "study_schedule recommendations book their suggested sessions.",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not pending", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Malformed content", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/study-sessions": {
            "get": {
                "tags": ["Planner"],
                "summary": "List study sessions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Planner"],
                "summary": "Plan study session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudySessionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/commitments": {
            "get": {
                "tags": ["Planner"],
                "summary": "List personal commitments",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Planner"],
                "summary": "Record personal commitment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCommitmentRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/profile": {
            "get": {
                "tags": ["Profile"],
                "summary": "Get profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Profile"],
                "summary": "Update profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/sign-out": {
            "post": {
                "tags": ["Profile"],
                "summary": "Sign out",
                "description": "Revokes the presented token until it expires.",
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "AnalysisRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"}
            }
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "estimated_hours": {"type": "integer"},
                "priority": {"type": "string", "enum": ["high", "medium", "low"]}
            },
            "required": ["title", "due_date"]
        },
        "UpdateAssignmentRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "estimated_hours": {"type": "integer"},
                "priority": {"type": "string", "enum": ["high", "medium", "low"]},
                "status": {"type": "string", "enum": ["pending", "in_progress", "completed"]}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "CourseRequest": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"},
                "course_name": {"type": "string"},
                "instructor": {"type": "string"},
                "credits": {"type": "integer"},
                "semester": {"type": "string"},
                "schedule": {"type": "array", "items": {"type": "object"}}
            },
            "required": ["course_code", "course_name"]
        },
        "CreateStudySessionRequest": {
            "type": "object",
            "properties": {
                "assignment_id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"}
            },
            "required": ["title", "start_time", "end_time"]
        },
        "CreateCommitmentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "recurring": {"type": "boolean"},
                "recurrence_pattern": {"type": "object"}
            },
            "required": ["title", "start_time", "end_time"]
        },
        "UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "university": {"type": "string"},
                "major": {"type": "string"}
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
