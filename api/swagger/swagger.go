package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Fees API",
        "description": "Fee ledger and balance reconciliation service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Fee Categories", "description": "Kinds of charges and who they apply to"},
        {"name": "Fee Structures", "description": "Charges per year, class, medium and category"},
        {"name": "Fee Assignments", "description": "Student fee ledger rows"},
        {"name": "Fee Payments", "description": "Payments and printable receipts"},
        {"name": "Fee Summaries", "description": "Collection summaries, statements and the audit"},
        {"name": "Concessions", "description": "Per-student discount windows"},
        {"name": "Notifications", "description": "Student notifications and balance reminders"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/fee-categories": {
            "get": {
                "tags": ["Fee Categories"],
                "summary": "List fee categories",
                "parameters": [
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Fee Categories"],
                "summary": "Create fee category",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFeeCategoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate name"}
                }
            }
        },
        "/fee-categories/{id}": {
            "get": {
                "tags": ["Fee Categories"],
                "summary": "Get fee category",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Fee Categories"],
                "summary": "Update fee category",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFeeCategoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Fee Categories"],
                "summary": "Delete fee category",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Referenced by fee structures"}
                }
            }
        },
        "/fee-structures": {
            "get": {
                "tags": ["Fee Structures"],
                "summary": "List fee structures",
                "parameters": [
                    {"name": "academic_year_id", "in": "query", "type": "string"},
                    {"name": "class_name", "in": "query", "type": "string"},
                    {"name": "medium", "in": "query", "type": "string"},
                    {"name": "fee_category_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Fee Structures"],
                "summary": "Create fee structure",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFeeStructureRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate year, class, medium and category"}
                }
            }
        },
        "/fee-structures/{id}": {
            "get": {
                "tags": ["Fee Structures"],
                "summary": "Get fee structure",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Fee Structures"],
                "summary": "Update fee structure",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFeeStructureRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Fee Structures"],
                "summary": "Delete fee structure",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Student assignments exist"}
                }
            }
        },
        "/fee-assignments": {
            "get": {
                "tags": ["Fee Assignments"],
                "summary": "List fee assignments",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "fee_structure_id", "in": "query", "type": "string"},
                    {"name": "class_name", "in": "query", "type": "string"},
                    {"name": "fully_paid", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Fee Assignments"],
                "summary": "Assign a fee structure to one student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignFeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fee-assignments/bulk": {
            "post": {
                "tags": ["Fee Assignments"],
                "summary": "Assign a fee structure to every eligible student of a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkAssignFeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fee-assignments/{id}": {
            "get": {
                "tags": ["Fee Assignments"],
                "summary": "Get fee assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Fee Assignments"],
                "summary": "Delete a fee assignment without payments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Payments exist"}
                }
            }
        },
        "/fee-assignments/{id}/discount": {
            "put": {
                "tags": ["Fee Assignments"],
                "summary": "Update the discount on an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDiscountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Paid amount exceeds new final amount"}
                }
            }
        },
        "/fee-payments": {
            "get": {
                "tags": ["Fee Payments"],
                "summary": "List fee payments",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "fee_assignment_id", "in": "query", "type": "string"},
                    {"name": "payment_mode", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Fee Payments"],
                "summary": "Record a fee payment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFeePaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Receipt number collision"},
                    "422": {"description": "Payment exceeds remaining balance"}
                }
            }
        },
        "/fee-payments/{id}": {
            "get": {
                "tags": ["Fee Payments"],
                "summary": "Get fee payment detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fee-payments/{id}/receipt": {
            "get": {
                "tags": ["Fee Payments"],
                "summary": "Download the PDF receipt for a payment",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF receipt"}
                }
            }
        },
        "/fee-summaries/classes/{class_name}": {
            "get": {
                "tags": ["Fee Summaries"],
                "summary": "Collection summary for one class",
                "parameters": [
                    {"name": "class_name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fee-summaries/students/{student_id}": {
            "get": {
                "tags": ["Fee Summaries"],
                "summary": "Fee statement for one student",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fee-summaries/students/{student_id}/statement": {
            "get": {
                "tags": ["Fee Summaries"],
                "summary": "Download the fee statement as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF statement"}
                }
            }
        },
        "/fee-summaries/audit": {
            "get": {
                "tags": ["Fee Summaries"],
                "summary": "Reconcile the ledger against its invariants",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fee-summaries/collections/export": {
            "get": {
                "tags": ["Fee Summaries"],
                "summary": "Export payment collections as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV export"}
                }
            }
        },
        "/fee-concessions": {
            "post": {
                "tags": ["Concessions"],
                "summary": "Grant a concession",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateConcessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fee-concessions/{id}": {
            "delete": {
                "tags": ["Concessions"],
                "summary": "Revoke a concession",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/students/{student_id}/concessions": {
            "get": {
                "tags": ["Concessions"],
                "summary": "List a student's concessions",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{student_id}/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List a student's fee notifications",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fee-notifications/{id}/read": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/fee-reminders": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Send balance reminders to a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendRemindersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{student_id}/reminders": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Reminder history for one student",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateFeeCategoryRequest": {
            "type": "object",
            "required": ["name", "fee_type", "applicable_to"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "fee_type": {"type": "string", "enum": ["mandatory", "optional"]},
                "applicable_to": {"type": "string", "description": "all | day_scholar | hosteller | transport_user | section:<id>"},
                "is_refundable": {"type": "boolean"},
                "active": {"type": "boolean"}
            }
        },
        "UpdateFeeCategoryRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "fee_type": {"type": "string"},
                "applicable_to": {"type": "string"},
                "is_refundable": {"type": "boolean"},
                "active": {"type": "boolean"}
            }
        },
        "CreateFeeStructureRequest": {
            "type": "object",
            "required": ["academic_year_id", "class_name", "medium", "fee_category_id", "amount", "due_date"],
            "properties": {
                "academic_year_id": {"type": "string"},
                "class_name": {"type": "string"},
                "medium": {"type": "string", "enum": ["English", "Tamil"]},
                "fee_category_id": {"type": "string"},
                "amount": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "installments": {"type": "integer"}
            }
        },
        "UpdateFeeStructureRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "installments": {"type": "integer"}
            }
        },
        "AssignFeeRequest": {
            "type": "object",
            "required": ["student_id", "fee_structure_id"],
            "properties": {
                "student_id": {"type": "string"},
                "fee_structure_id": {"type": "string"},
                "discount_amount": {"type": "string"}
            }
        },
        "BulkAssignFeeRequest": {
            "type": "object",
            "required": ["class_name", "fee_structure_id"],
            "properties": {
                "class_name": {"type": "string"},
                "fee_structure_id": {"type": "string"}
            }
        },
        "UpdateDiscountRequest": {
            "type": "object",
            "required": ["discount_amount"],
            "properties": {
                "discount_amount": {"type": "string"}
            }
        },
        "CreateFeePaymentRequest": {
            "type": "object",
            "required": ["student_id", "amount_paid", "payment_mode"],
            "properties": {
                "student_id": {"type": "string"},
                "fee_assignment_id": {"type": "string"},
                "amount_paid": {"type": "string"},
                "payment_mode": {"type": "string", "enum": ["Cash", "UPI", "Card", "Cheque", "NEFT", "Online"]},
                "payment_date": {"type": "string", "format": "date-time"},
                "remarks": {"type": "string"},
                "processed_by": {"type": "string"}
            }
        },
        "CreateConcessionRequest": {
            "type": "object",
            "required": ["student_id", "concession_type", "discount_percentage", "valid_from"],
            "properties": {
                "student_id": {"type": "string"},
                "concession_type": {"type": "string"},
                "discount_percentage": {"type": "string"},
                "valid_from": {"type": "string", "format": "date-time"},
                "valid_until": {"type": "string", "format": "date-time"}
            }
        },
        "SendRemindersRequest": {
            "type": "object",
            "required": ["class_name"],
            "properties": {
                "class_name": {"type": "string"},
                "message": {"type": "string"}
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
