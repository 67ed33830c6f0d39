package functions

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/todoai/server/internal/aifn"
	"codeberg.org/todoai/server/internal/errors"
)

// ListHandler godoc
// @Summary List AI functions
// @Description Lists every registered function with its signature, parameters and return schema
// @Tags functions
// @Produce json
// @Success 200 {object} ListResponse
// @Router /api/v1/functions [get]
func ListHandler(reg *aifn.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		fns := reg.List()

		infos := make([]aifn.Info, 0, len(fns))
		for _, fn := range fns {
			infos = append(infos, aifn.Describe(fn))
		}

		c.JSON(http.StatusOK, ListResponse{Functions: infos})
	}
}

// GetCallHandler godoc
// @Summary Call an AI function with query parameters
// @Description Query parameters are coerced to the declared parameter types. Repeat a parameter to pass a list.
// @Tags functions
// @Produce json
// @Param name path string true "Function name"
// @Success 200 {object} CallResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/functions/{name} [get]
func GetCallHandler(reg *aifn.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		fn, ok := lookup(c, reg)
		if !ok {
			return
		}

		args := aifn.Args{}
		for key, values := range c.Request.URL.Query() {
			if len(values) == 1 {
				args[key] = values[0]
			} else {
				args[key] = values
			}
		}

		call(c, fn, args)
	}
}

// PostCallHandler godoc
// @Summary Call an AI function
// @Tags functions
// @Accept json
// @Produce json
// @Param name path string true "Function name"
// @Param request body CallRequest true "Arguments by parameter name"
// @Success 200 {object} CallResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/functions/{name} [post]
func PostCallHandler(reg *aifn.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		fn, ok := lookup(c, reg)
		if !ok {
			return
		}

		var req CallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		call(c, fn, req.Args)
	}
}

// MapHandler godoc
// @Summary Call an AI function once per argument set
// @Description Calls run concurrently; results come back in input order.
// @Tags functions
// @Accept json
// @Produce json
// @Param name path string true "Function name"
// @Param request body MapRequest true "Argument sets"
// @Success 200 {object} MapResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/functions/{name}/map [post]
func MapHandler(reg *aifn.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		fn, ok := lookup(c, reg)
		if !ok {
			return
		}

		var req MapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		argSets := make([]aifn.Args, len(req.Args))
		for i, args := range req.Args {
			argSets[i] = args
		}

		results, err := fn.InvokeAll(c.Request.Context(), argSets)
		if err != nil {
			respondCallError(c, err)
			return
		}

		c.JSON(http.StatusOK, MapResponse{Name: fn.Definition().Name, Results: results})
	}
}

func lookup(c *gin.Context, reg *aifn.Registry) (aifn.Invoker, bool) {
	fn, err := reg.Get(c.Param("name"))
	if err != nil {
		errors.NotFound(c, "function")
		return nil, false
	}

	return fn, true
}

func call(c *gin.Context, fn aifn.Invoker, args aifn.Args) {
	result, err := fn.Invoke(c.Request.Context(), args)
	if err != nil {
		respondCallError(c, err)
		return
	}

	c.JSON(http.StatusOK, CallResponse{Name: fn.Definition().Name, Result: result})
}

func respondCallError(c *gin.Context, err error) {
	if stderrors.Is(err, aifn.ErrInvalidArguments) {
		errors.ValidationError(c, err)
		return
	}

	errors.LLMError(c, "the function call failed", err)
}
