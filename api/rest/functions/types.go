package functions

import "codeberg.org/todoai/server/internal/aifn"

type CallRequest struct {
	Args map[string]any `json:"args"`
}

type MapRequest struct {
	Args []map[string]any `json:"args" binding:"required,min=1,max=50"`
}

type CallResponse struct {
	Name   string `json:"name"`
	Result any    `json:"result"`
}

type MapResponse struct {
	Name    string `json:"name"`
	Results []any  `json:"results"`
}

type ListResponse struct {
	Functions []aifn.Info `json:"functions"`
}
