package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Etut Scheduling API",
        "description": "Scheduling and conflict resolution for tutoring study sessions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and token rotation"},
        {"name": "Sessions", "description": "Booking, rescheduling and attendance"},
        {"name": "Availability", "description": "Per-teacher weekly availability templates"},
        {"name": "TimeSlots", "description": "Daily time catalog"},
        {"name": "Teachers", "description": "Teacher roster"},
        {"name": "Students", "description": "Student roster"},
        {"name": "Classrooms", "description": "Room inventory"},
        {"name": "Reports", "description": "Attendance and schedule exports"},
        {"name": "Admin", "description": "Administrative operations"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain a token pair",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List study sessions",
                "responses": {
                    "200": {"description": "Sessions with pagination"}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Book one individual session",
                "responses": {
                    "201": {"description": "Session committed"},
                    "409": {"description": "Availability or occupancy conflict"}
                }
            }
        },
        "/sessions/bulk": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Book several students into one slot",
                "responses": {
                    "201": {"description": "Committed and skipped students"},
                    "409": {"description": "Batch precondition failed"}
                }
            }
        },
        "/sessions/{id}/move": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Reschedule a session",
                "responses": {
                    "200": {"description": "Session moved"},
                    "404": {"description": "Session not found"},
                    "409": {"description": "Target conflicts"}
                }
            }
        },
        "/sessions/{id}/attendance": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Set the attendance label",
                "responses": {
                    "200": {"description": "Attendance updated"}
                }
            }
        },
        "/teachers/{teacherId}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Weekly availability template",
                "responses": {
                    "200": {"description": "Template grouped by weekday"}
                }
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Declare availability for a weekday and slot",
                "responses": {
                    "201": {"description": "Entry stored"}
                }
            },
            "put": {
                "tags": ["Availability"],
                "summary": "Replace the whole weekly template",
                "responses": {
                    "200": {"description": "New template"}
                }
            },
            "delete": {
                "tags": ["Availability"],
                "summary": "Withdraw a weekday and slot",
                "responses": {
                    "204": {"description": "Entry removed"}
                }
            }
        },
        "/teachers/{teacherId}/calendar": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Weekly calendar view for one teacher",
                "responses": {
                    "200": {"description": "Slots, template and sessions"}
                }
            }
        },
        "/time-slots": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "List the daily time catalog",
                "responses": {
                    "200": {"description": "Catalog in chronological order"}
                }
            }
        },
        "/reports/attendance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Per-student attendance aggregates",
                "responses": {
                    "200": {"description": "Aggregated counts"}
                }
            }
        }
    },
    "definitions": {
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
