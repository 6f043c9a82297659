// Package docs holds the swagger document served at /docs/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": [
        "http"
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Health check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Readiness check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Storage unavailable"
                    }
                }
            }
        },
        "/signup": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Register an account",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Registered",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    },
                    "409": {
                        "description": "Email already registered",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Credentials"
                        }
                    }
                ]
            }
        },
        "/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Log in",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Token and profile",
                        "schema": {
                            "$ref": "#/definitions/LoginResponse"
                        }
                    },
                    "401": {
                        "description": "Invalid email or password",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Credentials"
                        }
                    }
                ]
            }
        },
        "/states": {
            "get": {
                "tags": [
                    "Locations"
                ],
                "summary": "List states",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "States",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/LocationNode"
                            }
                        }
                    }
                }
            }
        },
        "/districts/{id}": {
            "get": {
                "tags": [
                    "Locations"
                ],
                "summary": "List districts of a state",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Districts",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/LocationNode"
                            }
                        }
                    },
                    "404": {
                        "description": "Unknown state",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "State ID"
                    }
                ]
            }
        },
        "/cities/{id}": {
            "get": {
                "tags": [
                    "Locations"
                ],
                "summary": "List cities of a district",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Cities",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/LocationNode"
                            }
                        }
                    },
                    "404": {
                        "description": "Unknown district",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "District ID"
                    }
                ]
            }
        },
        "/uploadimage": {
            "post": {
                "tags": [
                    "Tasks"
                ],
                "summary": "Upload a task image",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Stored image path",
                        "schema": {
                            "$ref": "#/definitions/UploadResponse"
                        }
                    },
                    "400": {
                        "description": "Missing image",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "in": "formData",
                        "name": "image",
                        "type": "file",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/createtasks": {
            "post": {
                "tags": [
                    "Tasks"
                ],
                "summary": "Create a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Task"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TaskInput"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/taskslist": {
            "get": {
                "tags": [
                    "Tasks"
                ],
                "summary": "List tasks",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Tasks",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/Task"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/updatetasks/{id}": {
            "put": {
                "tags": [
                    "Tasks"
                ],
                "summary": "Update a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Updated",
                        "schema": {
                            "$ref": "#/definitions/Task"
                        }
                    },
                    "404": {
                        "description": "Task not found",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "Task ID"
                    },
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TaskInput"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/deletetasks/{id}": {
            "delete": {
                "tags": [
                    "Tasks"
                ],
                "summary": "Delete a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Deleted",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    },
                    "404": {
                        "description": "Task not found",
                        "schema": {
                            "$ref": "#/definitions/Message"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "Task ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "Message": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string",
                    "example": "Task deleted successfully"
                }
            }
        },
        "Credentials": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "example": "user@example.com"
                },
                "password": {
                    "type": "string",
                    "example": "secret"
                }
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string",
                    "example": "User"
                },
                "email": {
                    "type": "string",
                    "example": "user@example.com"
                }
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "token": {
                    "type": "string"
                },
                "user": {
                    "$ref": "#/definitions/User"
                }
            }
        },
        "LocationNode": {
            "type": "object",
            "properties": {
                "_id": {
                    "type": "string",
                    "example": "st-mh"
                },
                "name": {
                    "type": "string",
                    "example": "Maharashtra"
                }
            }
        },
        "UploadResponse": {
            "type": "object",
            "properties": {
                "imageUrl": {
                    "type": "string",
                    "example": "uploads/3f6c.jpg"
                }
            }
        },
        "TaskInput": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string",
                    "example": "Fix pothole"
                },
                "description": {
                    "type": "string"
                },
                "state": {
                    "type": "string",
                    "example": "st-mh"
                },
                "district": {
                    "type": "string",
                    "example": "ds-pune"
                },
                "city": {
                    "type": "string",
                    "example": "ct-baner"
                },
                "imageUrl": {
                    "type": "string"
                },
                "taskStatus": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "in-progress",
                        "completed"
                    ]
                }
            }
        },
        "Task": {
            "type": "object",
            "properties": {
                "_id": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "state": {
                    "$ref": "#/definitions/LocationNode"
                },
                "district": {
                    "$ref": "#/definitions/LocationNode"
                },
                "city": {
                    "$ref": "#/definitions/LocationNode"
                },
                "image": {
                    "type": "string"
                },
                "taskStatus": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "in-progress",
                        "completed"
                    ]
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "MiniTask API",
	Description:      "Reference task service for the MiniTask client",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
