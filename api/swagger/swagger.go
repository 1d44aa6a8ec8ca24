package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Registrar API",
        "description": "Course registration, grading, and administration",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, tokens, passwords"},
        {"name": "Students", "description": "Catalog, registration, transcripts"},
        {"name": "Instructors", "description": "Sections and grading"},
        {"name": "Admin", "description": "Accounts, catalog CRUD, maintenance, backups"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"},
                    "423": {"description": "Account locked"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "Logged out"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/password": {
            "put": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "Password changed"},
                    "401": {"description": "Wrong current password"}
                }
            }
        },
        "/catalog": {
            "get": {
                "tags": ["Students"],
                "summary": "Course catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/me/registrations": {
            "post": {
                "tags": ["Students"],
                "summary": "Register for a section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Registered"},
                    "404": {"description": "Student or section missing"},
                    "409": {"description": "Duplicate, full, or past deadline"},
                    "503": {"description": "Maintenance mode"}
                }
            }
        },
        "/students/me/registrations/{sectionId}": {
            "delete": {
                "tags": ["Students"],
                "summary": "Drop a section",
                "parameters": [
                    {"name": "sectionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Dropped"},
                    "404": {"description": "No enrollment"},
                    "409": {"description": "Past deadline"},
                    "503": {"description": "Maintenance mode"}
                }
            }
        },
        "/students/me/timetable": {
            "get": {
                "tags": ["Students"],
                "summary": "Weekly timetable",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/me/grades": {
            "get": {
                "tags": ["Students"],
                "summary": "Grade view",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/me/transcript": {
            "get": {
                "tags": ["Students"],
                "summary": "Download transcript",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Transcript file"}
                }
            }
        },
        "/instructors/me/sections": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List taught sections",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/me/sections/{id}/grades": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Section gradebooks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not your section"}
                }
            }
        },
        "/instructors/me/sections/{id}/final-grades": {
            "post": {
                "tags": ["Instructors"],
                "summary": "Compute final grades",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/FinalGradesRequest"}}
                ],
                "responses": {
                    "204": {"description": "Computed"},
                    "403": {"description": "Not your section"},
                    "503": {"description": "Maintenance mode"}
                }
            }
        },
        "/instructors/me/sections/{id}/students/{studentId}/scores": {
            "post": {
                "tags": ["Instructors"],
                "summary": "Record raw scores",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordScoresRequest"}}
                ],
                "responses": {
                    "204": {"description": "Recorded"},
                    "400": {"description": "Score out of range"},
                    "503": {"description": "Maintenance mode"}
                }
            }
        },
        "/instructors/me/sections/{id}/students/{studentId}/components": {
            "put": {
                "tags": ["Instructors"],
                "summary": "Save weighted components",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveComponentsRequest"}}
                ],
                "responses": {
                    "204": {"description": "Saved"},
                    "400": {"description": "Invalid weights or scores"},
                    "503": {"description": "Maintenance mode"}
                }
            }
        },
        "/instructors/me/sections/{id}/students/{studentId}/components/final": {
            "put": {
                "tags": ["Instructors"],
                "summary": "Save components with explicit final grade",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveComponentsWithFinalRequest"}}
                ],
                "responses": {
                    "204": {"description": "Saved"},
                    "400": {"description": "Score out of range"},
                    "503": {"description": "Maintenance mode"}
                }
            }
        },
        "/admin/users": {
            "post": {
                "tags": ["Admin"],
                "summary": "Create a user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Username taken"}
                }
            }
        },
        "/admin/users/{username}/lock": {
            "post": {
                "tags": ["Admin"],
                "summary": "Lock a user",
                "parameters": [
                    {"name": "username", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LockUserRequest"}}
                ],
                "responses": {
                    "204": {"description": "Locked"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/admin/users/{username}/unlock": {
            "post": {
                "tags": ["Admin"],
                "summary": "Unlock a user",
                "parameters": [
                    {"name": "username", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Unlocked"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/admin/students/{id}/profile": {
            "put": {
                "tags": ["Admin"],
                "summary": "Set a student profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/admin/instructors/{id}/profile": {
            "put": {
                "tags": ["Admin"],
                "summary": "Set an instructor profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InstructorProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/admin/courses": {
            "post": {
                "tags": ["Admin"],
                "summary": "Create a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate course id"}
                }
            }
        },
        "/admin/courses/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Dependent sections exist"}
                }
            }
        },
        "/admin/sections": {
            "post": {
                "tags": ["Admin"],
                "summary": "Create a section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate section id"}
                }
            }
        },
        "/admin/sections/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Dependent enrollments exist"}
                }
            }
        },
        "/admin/sections/{id}/instructor": {
            "put": {
                "tags": ["Admin"],
                "summary": "Assign an instructor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignInstructorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Section or instructor missing"}
                }
            }
        },
        "/admin/maintenance": {
            "get": {
                "tags": ["Admin"],
                "summary": "Maintenance state",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "put": {
                "tags": ["Admin"],
                "summary": "Toggle maintenance mode",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MaintenanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/backup": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export catalog backup",
                "responses": {
                    "200": {"description": "Snapshot text"}
                }
            }
        },
        "/admin/restore": {
            "post": {
                "tags": ["Admin"],
                "summary": "Restore catalog backup",
                "responses": {
                    "204": {"description": "Restored"},
                    "400": {"description": "Malformed snapshot"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "current_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["current_password", "new_password"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "section_id": {"type": "string"}
            },
            "required": ["section_id"]
        },
        "RecordScoresRequest": {
            "type": "object",
            "properties": {
                "scores": {"type": "object", "additionalProperties": {"type": "number"}}
            },
            "required": ["scores"]
        },
        "FinalGradesRequest": {
            "type": "object",
            "properties": {
                "weight_overrides": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "GradeComponent": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "score": {"type": "number"},
                "weight": {"type": "number"}
            }
        },
        "SaveComponentsRequest": {
            "type": "object",
            "properties": {
                "components": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeComponent"}
                }
            },
            "required": ["components"]
        },
        "SaveComponentsWithFinalRequest": {
            "type": "object",
            "properties": {
                "components": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeComponent"}
                },
                "final_grade": {"type": "number"}
            },
            "required": ["components"]
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "INSTRUCTOR", "STUDENT"]}
            },
            "required": ["username", "password", "role"]
        },
        "LockUserRequest": {
            "type": "object",
            "properties": {
                "minutes": {"type": "integer"}
            },
            "required": ["minutes"]
        },
        "StudentProfileRequest": {
            "type": "object",
            "properties": {
                "roll_number": {"type": "string"},
                "program": {"type": "string"},
                "year": {"type": "integer"}
            },
            "required": ["roll_number", "program", "year"]
        },
        "InstructorProfileRequest": {
            "type": "object",
            "properties": {
                "department": {"type": "string"},
                "title": {"type": "string"}
            },
            "required": ["department", "title"]
        },
        "CreateCourseRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "code": {"type": "string"},
                "title": {"type": "string"},
                "credits": {"type": "integer"}
            },
            "required": ["course_id", "code", "title", "credits"]
        },
        "CreateSectionRequest": {
            "type": "object",
            "properties": {
                "section_id": {"type": "string"},
                "course_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "room": {"type": "string"},
                "capacity": {"type": "integer"},
                "semester": {"type": "integer"},
                "year": {"type": "integer"},
                "registration_deadline": {"type": "string"},
                "weighting_rule": {"type": "string"},
                "component_names": {"type": "string"}
            },
            "required": ["section_id", "course_id", "instructor_id", "capacity"]
        },
        "AssignInstructorRequest": {
            "type": "object",
            "properties": {
                "instructor_id": {"type": "string"}
            },
            "required": ["instructor_id"]
        },
        "MaintenanceRequest": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"}
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
                "pagination": {"type": "object"},
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
