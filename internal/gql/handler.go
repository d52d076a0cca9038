package gql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/vladpavlovski/phm-sub006/internal/api/respond"
)

// Request is a GraphQL-over-HTTP request.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Do executes one request.
func (s *Schema) Do(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// Handler serves /graphql. Executed operations answer 200 with any resolver
// errors in the body; requests that cannot be decoded answer 400.
type Handler struct {
	schema *Schema
	logger *slog.Logger
}

// NewHandler wraps s for HTTP.
func NewHandler(s *Schema, logger *slog.Logger) *Handler {
	return &Handler{schema: s, logger: logger}
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var body errorBody
	body.Errors = append(body.Errors, struct {
		Message string `json:"message"`
	}{msg})
	respond.WriteJSONObject(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) { writeError(w, http.StatusBadRequest, msg) }

// ServeHTTP executes a GraphQL operation.
// @Summary GraphQL endpoint
// @Description Executes a query or mutation against the league graph.
// @Tags graphql
// @Accept json
// @Produce json
// @Param body body gql.Request true "GraphQL request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /graphql [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	res := h.schema.Do(r.Context(), req)
	if res.HasErrors() {
		for _, e := range res.Errors {
			h.logger.Debug("GraphQL error", "operation", req.OperationName, "error", e.Message)
		}
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}

func decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				badRequest(w, "variables must be a JSON object")
				return req, false
			}
		}
	case http.MethodPost:
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/graphql") {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				badRequest(w, "could not read body")
				return req, false
			}
			req.Query = string(body)
			break
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "body must be a JSON GraphQL request")
			return req, false
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return req, false
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(w, "query is required")
		return req, false
	}
	return req, true
}
