package ai

import "encoding/json"

// input for cast and extract. Schema describes the result, or one item of it for extract;
// without one the result is a string.
type TaskRequest struct {
	Data         string          `json:"data" binding:"required,max=20000"`
	Schema       json.RawMessage `json:"schema,omitempty" swaggertype:"object"`
	Instructions string          `json:"instructions,omitempty" binding:"max=2000"`
}

type ClassifyRequest struct {
	Data         string   `json:"data" binding:"required,max=20000"`
	Labels       []string `json:"labels" binding:"required,min=1,max=100,dive,required"`
	Instructions string   `json:"instructions,omitempty" binding:"max=2000"`
}

type GenerateRequest struct {
	N            int             `json:"n" binding:"required,min=1,max=50"`
	Schema       json.RawMessage `json:"schema,omitempty" swaggertype:"object"`
	Instructions string          `json:"instructions,omitempty" binding:"max=2000"`
	Temperature  *float32        `json:"temperature,omitempty" binding:"omitempty,min=0,max=2"`
}

type ResultResponse struct {
	Result any `json:"result"`
}
