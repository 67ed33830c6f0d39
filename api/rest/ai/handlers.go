package ai

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/todoai/server/internal/aifn"
	"codeberg.org/todoai/server/internal/errors"
	"codeberg.org/todoai/server/internal/llm"
)

// results are strings unless the caller sends a schema
var stringSchema = json.RawMessage(`{"type":"string"}`)

// CastHandler godoc
// @Summary Convert data into a given shape
// @Description Converts free text into a value matching the JSON schema, or a string when none is given
// @Tags ai
// @Accept json
// @Produce json
// @Param request body TaskRequest true "Data and target schema"
// @Success 200 {object} ResultResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/ai/cast [post]
func CastHandler(client llm.ChatCompleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		result, err := aifn.Cast[any](c.Request.Context(), client, req.Data,
			aifn.WithSchema(schemaOrString(req.Schema)),
			aifn.WithInstructions(req.Instructions),
		)
		respond(c, result, err)
	}
}

// ExtractHandler godoc
// @Summary Extract entities from data
// @Description Returns every entity matching the item schema, in order of appearance
// @Tags ai
// @Accept json
// @Produce json
// @Param request body TaskRequest true "Data and item schema"
// @Success 200 {object} ResultResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/ai/extract [post]
func ExtractHandler(client llm.ChatCompleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		result, err := aifn.Extract[any](c.Request.Context(), client, req.Data,
			aifn.WithSchema(schemaOrString(req.Schema)),
			aifn.WithInstructions(req.Instructions),
		)
		respond(c, result, err)
	}
}

// ClassifyHandler godoc
// @Summary Classify data with one of the given labels
// @Tags ai
// @Accept json
// @Produce json
// @Param request body ClassifyRequest true "Data and labels"
// @Success 200 {object} ResultResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/ai/classify [post]
func ClassifyHandler(client llm.ChatCompleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		result, err := aifn.Classify(c.Request.Context(), client, req.Data, req.Labels,
			aifn.WithInstructions(req.Instructions),
		)
		respond(c, result, err)
	}
}

// GenerateHandler godoc
// @Summary Generate exactly n examples
// @Description Generates n values matching the item schema, or n strings when none is given
// @Tags ai
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Count and item schema"
// @Success 200 {object} ResultResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/ai/generate [post]
func GenerateHandler(client llm.ChatCompleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		opts := []aifn.TaskOption{
			aifn.WithSchema(schemaOrString(req.Schema)),
			aifn.WithInstructions(req.Instructions),
		}
		if req.Temperature != nil {
			opts = append(opts, aifn.WithTemperature(*req.Temperature))
		}

		result, err := aifn.Generate[any](c.Request.Context(), client, req.N, opts...)
		respond(c, result, err)
	}
}

func schemaOrString(schema json.RawMessage) json.RawMessage {
	if len(schema) == 0 || string(schema) == "null" {
		return stringSchema
	}

	return schema
}

func respond(c *gin.Context, result any, err error) {
	if err == nil {
		c.JSON(http.StatusOK, ResultResponse{Result: result})
		return
	}

	if stderrors.Is(err, aifn.ErrInvalidArguments) {
		errors.ValidationError(c, err)
		return
	}

	errors.LLMError(c, "the model task failed", err)
}
