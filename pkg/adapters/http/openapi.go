package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/agrimind"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
)

// GetOpenAPI handles the GET /openapi.json request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := s.OpenAPI()
	if err != nil {
		s.logger.Error("Failed to build OpenAPI document", "error", err)
		http.Error(w, "Failed to build spec", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// OpenAPI describes the mounted routes. Action endpoints carry the input and
// output schemas of the registered actions.
func (s *Server) OpenAPI() (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "AgriMind API",
			Description: "Typed, validated AI actions for agriculture.",
			Version:     strings.TrimSpace(agrimind.Version),
		},
		Paths: openapi3.NewPaths(),
	}

	failure := failureSchema()
	result := func(output *openapi3.Schema) *openapi3.Schema {
		return openapi3.NewObjectSchema().
			WithProperty("action", openapi3.NewStringSchema()).
			WithProperty("output", output).
			WithProperty("error", failure)
	}
	errorBody := openapi3.NewObjectSchema().WithProperty("error", failure)
	object := openapi3.NewObjectSchema()

	doc.Paths.Set("/health", &openapi3.PathItem{Get: operation("getHealth", "Liveness probe", object)})
	doc.Paths.Set("/info", &openapi3.PathItem{Get: operation("getInfo", "Build information", object)})
	doc.Paths.Set("/v1/actions", &openapi3.PathItem{
		Get: operation("listActions", "List registered actions", openapi3.NewArraySchema().WithItems(object)),
	})

	for _, spec := range s.runner.Actions() {
		input, err := toSchema(spec.Input.JSONSchema())
		if err != nil {
			return nil, fmt.Errorf("input schema of %s: %w", spec.Name, err)
		}
		output, err := toSchema(spec.Output.JSONSchema())
		if err != nil {
			return nil, fmt.Errorf("output schema of %s: %w", spec.Name, err)
		}

		body := openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(input)
		body.Content["application/x-www-form-urlencoded"] = openapi3.NewMediaType().WithSchema(input)
		if spec.Attachment != "" {
			body.Content["multipart/form-data"] = openapi3.NewMediaType().WithSchema(input)
		}

		post := operation(operationID("run", spec.Name), spec.Description, result(output))
		post.Tags = []string{"actions"}
		post.RequestBody = &openapi3.RequestBodyRef{Value: body}
		post.AddResponse(http.StatusUnprocessableEntity, openapi3.NewResponse().WithDescription("Input failed validation").WithJSONSchema(result(output)))
		post.AddResponse(http.StatusBadGateway, openapi3.NewResponse().WithDescription("The upstream call failed or replied off-schema").WithJSONSchema(result(output)))

		doc.Paths.Set("/v1/actions/"+spec.Name, &openapi3.PathItem{
			Summary: spec.Description,
			Get:     operation(operationID("describe", spec.Name), "Describe "+spec.Name, object),
			Post:    post,
		})
	}

	if s.chat != nil {
		chatBody := openapi3.NewObjectSchema().
			WithProperty("conversationId", openapi3.NewStringSchema()).
			WithProperty("message", openapi3.NewStringSchema().WithMinLength(1))
		chatBody.Required = []string{"message"}
		turn := openapi3.NewObjectSchema().
			WithProperty("conversationId", openapi3.NewStringSchema()).
			WithProperty("response", openapi3.NewStringSchema()).
			WithProperty("conversation", object)

		post := operation("postChat", "Send a message to AgriBot", turn)
		post.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(chatBody)}
		post.AddResponse(http.StatusUnprocessableEntity, openapi3.NewResponse().WithDescription("Empty message").WithJSONSchema(errorBody))
		doc.Paths.Set("/v1/chat", &openapi3.PathItem{Post: post})

		doc.Paths.Set("/v1/conversations", &openapi3.PathItem{
			Get: operation("listConversations", "List stored conversations", object),
		})

		show := operation("getConversation", "Show a conversation", object)
		show.AddParameter(openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema()))
		show.AddResponse(http.StatusNotFound, openapi3.NewResponse().WithDescription("Unknown conversation").WithJSONSchema(errorBody))
		forget := openapi3.NewOperation()
		forget.OperationID = "deleteConversation"
		forget.Summary = "Delete a conversation"
		forget.AddParameter(openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema()))
		forget.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Deleted"),
		}))
		doc.Paths.Set("/v1/conversations/{id}", &openapi3.PathItem{Get: show, Delete: forget})
	}

	weather := operation("getLocalWeather", "Forecast for coordinates or the default location", object)
	weather.AddParameter(openapi3.NewQueryParameter("lat").WithSchema(openapi3.NewFloat64Schema().WithMin(-90).WithMax(90)))
	weather.AddParameter(openapi3.NewQueryParameter("lon").WithSchema(openapi3.NewFloat64Schema().WithMin(-180).WithMax(180)))
	doc.Paths.Set("/v1/weather/local", &openapi3.PathItem{Get: weather})

	seasonal := operation("getSeasonal", "Planting and harvest calendar", object)
	seasonal.AddParameter(openapi3.NewQueryParameter("crop").WithSchema(openapi3.NewStringSchema()))
	doc.Paths.Set("/v1/seasonal", &openapi3.PathItem{Get: seasonal})

	events := openapi3.NewOperation()
	events.OperationID = "subscribeEvents"
	events.Summary = "Server-sent stream of invocation outcomes"
	events.AddParameter(openapi3.NewQueryParameter("action").WithSchema(openapi3.NewStringSchema()))
	events.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Event stream").WithContent(openapi3.Content{
			"text/event-stream": openapi3.NewMediaType().WithSchema(openapi3.NewStringSchema()),
		}),
	}))
	doc.Paths.Set("/v1/events", &openapi3.PathItem{Get: events})

	return doc, nil
}

func operation(id, summary string, ok *openapi3.Schema) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("OK").WithJSONSchema(ok),
	}))
	return op
}

func failureSchema() *openapi3.Schema {
	field := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("reason", openapi3.NewStringSchema())
	return openapi3.NewObjectSchema().
		WithProperty("kind", openapi3.NewStringSchema().WithEnum(
			domain.KindValidation,
			domain.KindTransport,
			domain.KindSchemaMismatch,
			domain.KindEmptyResponse,
			domain.KindUnknownAction,
			domain.KindInternal,
		)).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("fields", openapi3.NewArraySchema().WithItems(field))
}

// toSchema converts a JSON Schema document into its OpenAPI form.
func toSchema(doc map[string]any) (*openapi3.Schema, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	s := openapi3.NewSchema()
	if err := json.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

// operationID turns ("run", "predict-yield") into "runPredictYield".
func operationID(verb, action string) string {
	var sb strings.Builder
	sb.WriteString(verb)
	for _, part := range strings.Split(action, "-") {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return sb.String()
}
