// Package docs expone el documento swagger 2.0 de la API con el layout de swag.
// Se mantiene a mano junto con las anotaciones godoc de los handlers.
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
        "/api/me": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "doctors"
                ],
                "summary": "Perfil del doctor autenticado",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/doctors.DoctorResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "doctors"
                ],
                "summary": "Crear/actualizar perfil del doctor",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/doctors.profileRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/doctors.DoctorResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/clients": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "clients"
                ],
                "summary": "Listar clientes",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Búsqueda por nombre",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/clients.ClientResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "clients"
                ],
                "summary": "Registrar cliente",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/clients.createRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/clients.ClientResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/clients/{clientID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "clients"
                ],
                "summary": "Obtener cliente",
                "parameters": [
                    {
                        "type": "string",
                        "description": "clientID",
                        "name": "clientID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/clients.ClientResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/clients/{clientID}/enrollments": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "programs"
                ],
                "summary": "Inscripciones del cliente",
                "parameters": [
                    {
                        "type": "string",
                        "description": "clientID",
                        "name": "clientID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/programs.EnrollmentResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "programs"
                ],
                "summary": "Inscribir cliente en programa",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "clientID",
                        "name": "clientID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/programs.enrollRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/programs.EnrollmentResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/clients/{clientID}/visits": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "visits"
                ],
                "summary": "Visitas del cliente",
                "parameters": [
                    {
                        "type": "string",
                        "description": "clientID",
                        "name": "clientID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/visits.VisitResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "visits"
                ],
                "summary": "Registrar visita",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "clientID",
                        "name": "clientID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/visits.createRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/visits.VisitResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/visits/{visitID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "visits"
                ],
                "summary": "Obtener visita",
                "parameters": [
                    {
                        "type": "string",
                        "description": "visitID",
                        "name": "visitID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/visits.VisitResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/programs": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "programs"
                ],
                "summary": "Listar programas",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/programs.ProgramResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "programs"
                ],
                "summary": "Crear programa",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/programs.createRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/programs.ProgramResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/medicines": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "prescriptions"
                ],
                "summary": "Listar medicamentos",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Búsqueda por nombre",
                        "name": "q",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/prescriptions.MedicineResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "prescriptions"
                ],
                "summary": "Registrar medicamento",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/prescriptions.medicineRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/prescriptions.MedicineResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/prescriptions": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "prescriptions"
                ],
                "summary": "Recetas del doctor",
                "parameters": [
                    {
                        "type": "string",
                        "description": "PENDING | DISPENSED | CANCELLED",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/prescriptions.PrescriptionResponse"
                            }
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "prescriptions"
                ],
                "summary": "Emitir receta",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/prescriptions.createRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/prescriptions.PrescriptionResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/prescriptions/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "prescriptions"
                ],
                "summary": "Obtener receta expandida",
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/prescriptions.PrescriptionResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "patch": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "prescriptions"
                ],
                "summary": "Actualizar estado de receta",
                "description": "Cambia el estado (PENDING, DISPENSED, CANCELLED) y devuelve la receta con visita, cliente, doctor e ítems.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/prescriptions.statusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/prescriptions.PrescriptionResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/lab-orders": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lab-orders"
                ],
                "summary": "Órdenes de laboratorio del doctor",
                "parameters": [
                    {
                        "type": "string",
                        "description": "PENDING | IN_PROGRESS | COMPLETED | CANCELLED",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/laborders.OrderResponse"
                            }
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lab-orders"
                ],
                "summary": "Crear orden de laboratorio",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/laborders.createRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/laborders.OrderResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/lab-orders/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lab-orders"
                ],
                "summary": "Obtener orden con resultados",
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/laborders.OrderResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/lab-orders/{id}/results": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lab-orders"
                ],
                "summary": "Registrar resultado",
                "description": "Registra un resultado y completa la orden según la política de completitud.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/laborders.resultRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/laborders.ResultResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        },
        "/api/swagger": {
            "get": {
                "description": "Documento swagger 2.0 de la API. No requiere sesión.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "docs"
                ],
                "summary": "Documento OpenAPI",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/api/dashboard/stats": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dashboard"
                ],
                "summary": "Estadísticas del dashboard",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dashboard.Stats"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/respond.ErrorBody"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "respond.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "validStatuses": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "doctors.profileRequest": {
            "type": "object",
            "properties": {
                "firstName": {
                    "type": "string"
                },
                "lastName": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "specialization": {
                    "type": "string"
                },
                "licenseNumber": {
                    "type": "string"
                }
            }
        },
        "doctors.DoctorResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "userId": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "firstName": {
                    "type": "string"
                },
                "lastName": {
                    "type": "string"
                },
                "specialization": {
                    "type": "string"
                },
                "licenseNumber": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "updatedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "clients.createRequest": {
            "type": "object",
            "properties": {
                "firstName": {
                    "type": "string"
                },
                "lastName": {
                    "type": "string"
                },
                "dateOfBirth": {
                    "type": "string",
                    "example": "1980-05-17"
                },
                "gender": {
                    "type": "string",
                    "enum": [
                        "FEMALE",
                        "MALE",
                        "OTHER",
                        "UNKNOWN"
                    ]
                },
                "phone": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                }
            }
        },
        "clients.ClientResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "firstName": {
                    "type": "string"
                },
                "lastName": {
                    "type": "string"
                },
                "dateOfBirth": {
                    "type": "string",
                    "format": "date-time"
                },
                "gender": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "createdBy": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "updatedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "programs.createRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "programs.ProgramResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "createdBy": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "programs.enrollRequest": {
            "type": "object",
            "properties": {
                "programId": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "programs.EnrollmentResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "clientId": {
                    "type": "string"
                },
                "programId": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "ACTIVE",
                        "COMPLETED",
                        "WITHDRAWN"
                    ]
                },
                "notes": {
                    "type": "string"
                },
                "enrolledBy": {
                    "type": "string"
                },
                "enrolledAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "visits.createRequest": {
            "type": "object",
            "properties": {
                "visitDate": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                },
                "diagnosis": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "visits.VisitResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "clientId": {
                    "type": "string"
                },
                "doctorId": {
                    "type": "string"
                },
                "visitDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "reason": {
                    "type": "string"
                },
                "diagnosis": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "prescriptions.medicineRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "genericName": {
                    "type": "string"
                },
                "form": {
                    "type": "string"
                },
                "strength": {
                    "type": "string"
                }
            }
        },
        "prescriptions.MedicineResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "genericName": {
                    "type": "string"
                },
                "form": {
                    "type": "string"
                },
                "strength": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "prescriptions.itemRequest": {
            "type": "object",
            "properties": {
                "medicineId": {
                    "type": "string"
                },
                "dosage": {
                    "type": "string"
                },
                "frequency": {
                    "type": "string"
                },
                "duration": {
                    "type": "string"
                },
                "quantity": {
                    "type": "integer"
                },
                "instructions": {
                    "type": "string"
                }
            }
        },
        "prescriptions.createRequest": {
            "type": "object",
            "properties": {
                "visitId": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/prescriptions.itemRequest"
                    }
                }
            }
        },
        "prescriptions.statusRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "enum": [
                        "PENDING",
                        "DISPENSED",
                        "CANCELLED"
                    ]
                }
            },
            "required": [
                "status"
            ]
        },
        "prescriptions.ItemResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "prescriptionId": {
                    "type": "string"
                },
                "medicineId": {
                    "type": "string"
                },
                "dosage": {
                    "type": "string"
                },
                "frequency": {
                    "type": "string"
                },
                "duration": {
                    "type": "string"
                },
                "quantity": {
                    "type": "integer"
                },
                "instructions": {
                    "type": "string"
                },
                "medicine": {
                    "$ref": "#/definitions/prescriptions.MedicineResponse"
                }
            }
        },
        "prescriptions.PrescriptionResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "visitId": {
                    "type": "string"
                },
                "clientId": {
                    "type": "string"
                },
                "doctorId": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "PENDING",
                        "DISPENSED",
                        "CANCELLED"
                    ]
                },
                "notes": {
                    "type": "string"
                },
                "issuedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "updatedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/prescriptions.ItemResponse"
                    }
                },
                "visit": {
                    "$ref": "#/definitions/visits.VisitResponse"
                },
                "client": {
                    "$ref": "#/definitions/clients.ClientResponse"
                },
                "doctor": {
                    "$ref": "#/definitions/doctors.DoctorResponse"
                }
            }
        },
        "laborders.createRequest": {
            "type": "object",
            "properties": {
                "clientId": {
                    "type": "string"
                },
                "visitId": {
                    "type": "string"
                },
                "tests": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "ROUTINE",
                        "URGENT",
                        "STAT"
                    ]
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "laborders.resultRequest": {
            "type": "object",
            "properties": {
                "parameter": {
                    "type": "string"
                },
                "value": {
                    "type": "string"
                },
                "unit": {
                    "type": "string"
                },
                "referenceRange": {
                    "type": "string"
                },
                "isAbnormal": {
                    "type": "boolean"
                },
                "notes": {
                    "type": "string"
                },
                "verifiedBy": {
                    "type": "string"
                }
            },
            "required": [
                "parameter",
                "value"
            ]
        },
        "laborders.ResultResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "labOrderId": {
                    "type": "string"
                },
                "parameter": {
                    "type": "string"
                },
                "value": {
                    "type": "string"
                },
                "unit": {
                    "type": "string"
                },
                "referenceRange": {
                    "type": "string"
                },
                "isAbnormal": {
                    "type": "boolean"
                },
                "notes": {
                    "type": "string"
                },
                "verifiedBy": {
                    "type": "string"
                },
                "resultedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "laborders.OrderResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "clientId": {
                    "type": "string"
                },
                "doctorId": {
                    "type": "string"
                },
                "visitId": {
                    "type": "string"
                },
                "tests": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "ROUTINE",
                        "URGENT",
                        "STAT"
                    ]
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "PENDING",
                        "IN_PROGRESS",
                        "COMPLETED",
                        "CANCELLED"
                    ]
                },
                "notes": {
                    "type": "string"
                },
                "orderedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "completedAt": {
                    "type": "string",
                    "format": "date-time",
                    "x-nullable": true
                },
                "updatedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "results": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/laborders.ResultResponse"
                    }
                }
            }
        },
        "dashboard.Totals": {
            "type": "object",
            "properties": {
                "clients": {
                    "type": "integer"
                },
                "programs": {
                    "type": "integer"
                },
                "activeEnrollments": {
                    "type": "integer"
                }
            }
        },
        "dashboard.MonthCount": {
            "type": "object",
            "properties": {
                "month": {
                    "type": "string",
                    "example": "2026-03"
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "dashboard.Stats": {
            "type": "object",
            "properties": {
                "totals": {
                    "$ref": "#/definitions/dashboard.Totals"
                },
                "prescriptionsByStatus": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "labOrdersByStatus": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "visitsByMonth": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dashboard.MonthCount"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Health Dashboard API",
	Description:      "API del dashboard clínico: clientes, programas, visitas, recetas y órdenes de laboratorio.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
