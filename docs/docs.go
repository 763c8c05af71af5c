// Package docs holds the OpenAPI document served under /swagger. It follows
// the layout of `swag init -g cmd/news_api/main.go` and is kept in sync with
// the handler annotations by hand.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "https://opensource.org/licenses/Apache-2.0"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/search": {
            "get": {
                "tags": [
                    "search"
                ],
                "summary": "Semantic article search",
                "description": "Ranks stored articles by cosine similarity to the query. An empty query is embedded as well, so min_score still applies.",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "free text query",
                        "name": "query",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "page size (1-100)",
                        "name": "limit",
                        "in": "query",
                        "default": 10
                    },
                    {
                        "type": "integer",
                        "description": "number of results to skip",
                        "name": "offset",
                        "in": "query",
                        "default": 0
                    },
                    {
                        "type": "number",
                        "description": "minimum similarity between -1 and 1",
                        "name": "min_score",
                        "in": "query",
                        "default": 0.35
                    },
                    {
                        "type": "string",
                        "description": "feed name",
                        "name": "source",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "category",
                        "name": "category",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "ISO date (YYYY-MM-DD) or date-time",
                        "name": "date",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "before, after, on_or_before, on_or_after or on",
                        "name": "date_operand",
                        "in": "query",
                        "default": "on"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SearchResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/article/{id}": {
            "get": {
                "tags": [
                    "search"
                ],
                "summary": "Get one article",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "article id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ArticleResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/sources": {
            "get": {
                "tags": [
                    "search"
                ],
                "summary": "List feed sources present in the store",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SourcesResponse"
                        }
                    }
                }
            }
        },
        "/api/categories": {
            "get": {
                "tags": [
                    "search"
                ],
                "summary": "List categories present in the store",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.CategoriesResponse"
                        }
                    }
                }
            }
        },
        "/api/stats": {
            "get": {
                "tags": [
                    "search"
                ],
                "summary": "Article statistics",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.StatsResponse"
                        }
                    }
                }
            }
        },
        "/api/news": {
            "get": {
                "tags": [
                    "news"
                ],
                "summary": "Latest articles",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "page size (1-100)",
                        "name": "limit",
                        "in": "query",
                        "default": 10
                    },
                    {
                        "type": "integer",
                        "description": "number of results to skip",
                        "name": "offset",
                        "in": "query",
                        "default": 0
                    },
                    {
                        "type": "integer",
                        "description": "alias of offset",
                        "name": "skip",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SearchResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/news/source/{source}": {
            "get": {
                "tags": [
                    "news"
                ],
                "summary": "Latest articles of one source",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "feed name",
                        "name": "source",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "page size (1-100)",
                        "name": "limit",
                        "in": "query",
                        "default": 10
                    },
                    {
                        "type": "integer",
                        "description": "number of results to skip",
                        "name": "offset",
                        "in": "query",
                        "default": 0
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SearchResponse"
                        }
                    }
                }
            }
        },
        "/api/news/category/{category}": {
            "get": {
                "tags": [
                    "news"
                ],
                "summary": "Latest articles of one category",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "category",
                        "name": "category",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "page size (1-100)",
                        "name": "limit",
                        "in": "query",
                        "default": 10
                    },
                    {
                        "type": "integer",
                        "description": "number of results to skip",
                        "name": "offset",
                        "in": "query",
                        "default": 0
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SearchResponse"
                        }
                    }
                }
            }
        },
        "/api/news/fetch": {
            "post": {
                "tags": [
                    "ingest"
                ],
                "summary": "Trigger an ingestion run",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/dto.FetchResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    },
                    "429": {
                        "description": "Too Many Requests",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/status": {
            "get": {
                "tags": [
                    "ingest"
                ],
                "summary": "Ingestion status and the last run report",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/router.statusResponse"
                        }
                    }
                }
            }
        },
        "/api/cache/{source}": {
            "get": {
                "tags": [
                    "ingest"
                ],
                "summary": "Last fetched batch of one source",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "feed name",
                        "name": "source",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.CacheResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/monitoring/requests": {
            "get": {
                "tags": [
                    "monitoring"
                ],
                "summary": "Recently served API requests",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/router.requestsResponse"
                        }
                    }
                }
            }
        },
        "/api/company/add": {
            "post": {
                "description": "Embeds the article and stores it in the company collection. title, url and summary are required.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "company"
                ],
                "summary": "Publish a company article",
                "parameters": [
                    {
                        "description": "article",
                        "name": "article",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CompanyArticleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.CompanyAddResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/company/search": {
            "get": {
                "tags": [
                    "company"
                ],
                "summary": "Semantic search over company articles",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "free text query",
                        "name": "query",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "page size (1-100)",
                        "name": "limit",
                        "in": "query",
                        "default": 10
                    },
                    {
                        "type": "integer",
                        "description": "number of results to skip",
                        "name": "offset",
                        "in": "query",
                        "default": 0
                    },
                    {
                        "type": "number",
                        "description": "minimum similarity between -1 and 1",
                        "name": "min_score",
                        "in": "query",
                        "default": 0.35
                    },
                    {
                        "type": "string",
                        "description": "feed name",
                        "name": "source",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "category",
                        "name": "category",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "ISO date (YYYY-MM-DD) or date-time",
                        "name": "date",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "before, after, on_or_before, on_or_after or on",
                        "name": "date_operand",
                        "in": "query",
                        "default": "on"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SearchResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/apperr.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/company/sources": {
            "get": {
                "tags": [
                    "company"
                ],
                "summary": "List sources present in the company collection",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SourcesResponse"
                        }
                    }
                }
            }
        },
        "/api/company/categories": {
            "get": {
                "tags": [
                    "company"
                ],
                "summary": "List categories present in the company collection",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.CategoriesResponse"
                        }
                    }
                }
            }
        },
        "/api/company/stats": {
            "get": {
                "tags": [
                    "company"
                ],
                "summary": "Company article statistics",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.StatsResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "apperr.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "dto.Article": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "content": {
                    "type": "string"
                },
                "summary": {
                    "type": "string"
                },
                "url": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                },
                "published_date": {
                    "type": "string"
                },
                "author": {
                    "type": "string"
                },
                "categories": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "image_url": {
                    "type": "string"
                }
            }
        },
        "dto.ArticleSearchResult": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "content": {
                    "type": "string"
                },
                "summary": {
                    "type": "string"
                },
                "url": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                },
                "published_date": {
                    "type": "string"
                },
                "author": {
                    "type": "string"
                },
                "categories": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "image_url": {
                    "type": "string"
                },
                "score": {
                    "type": "number"
                }
            }
        },
        "dto.SearchResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "count": {
                    "type": "integer"
                },
                "results": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ArticleSearchResult"
                    }
                }
            }
        },
        "dto.ArticleResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "article": {
                    "$ref": "#/definitions/dto.Article"
                }
            }
        },
        "dto.SourcesResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "count": {
                    "type": "integer"
                },
                "sources": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "dto.CategoriesResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "count": {
                    "type": "integer"
                },
                "categories": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "dto.StatsResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "total_articles": {
                    "type": "integer"
                },
                "articles_today": {
                    "type": "integer"
                },
                "sources": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "categories": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "dto.FetchResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "dto.CompanyArticleRequest": {
            "type": "object",
            "required": [
                "summary",
                "title",
                "url"
            ],
            "properties": {
                "title": {
                    "type": "string"
                },
                "url": {
                    "type": "string"
                },
                "summary": {
                    "type": "string"
                },
                "content": {
                    "type": "string"
                },
                "published_date": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                },
                "categories": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "image_url": {
                    "type": "string"
                }
            }
        },
        "dto.CompanyAddResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "message": {
                    "type": "string"
                },
                "article_id": {
                    "type": "string"
                }
            }
        },
        "dto.CacheResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "source": {
                    "type": "string"
                },
                "count": {
                    "type": "integer"
                },
                "articles": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.Article"
                    }
                }
            }
        },
        "ingest.SourceFailure": {
            "type": "object",
            "properties": {
                "source": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                },
                "temporary": {
                    "type": "boolean"
                }
            }
        },
        "ingest.Report": {
            "type": "object",
            "properties": {
                "total_fetched": {
                    "type": "integer"
                },
                "recent_articles": {
                    "type": "integer"
                },
                "existing_articles": {
                    "type": "integer"
                },
                "new_articles_added": {
                    "type": "integer"
                },
                "stored_articles": {
                    "type": "integer"
                },
                "failed_sources": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/ingest.SourceFailure"
                    }
                },
                "started_at": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "router.statusResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "scheduler_active": {
                    "type": "boolean"
                },
                "ingestion_running": {
                    "type": "boolean"
                },
                "last_run": {
                    "$ref": "#/definitions/ingest.Report"
                }
            }
        },
        "monitor.Request": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "method": {
                    "type": "string"
                },
                "endpoint": {
                    "type": "string"
                },
                "params": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "start_time": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "status_code": {
                    "type": "integer"
                },
                "duration_ms": {
                    "type": "number"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "router.requestsResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "count": {
                    "type": "integer"
                },
                "requests": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/monitor.Request"
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
	Title:            "NewsMan API",
	Description:      "Semantic search over articles ingested from RSS and Atom feeds",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
