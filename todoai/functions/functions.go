// Package functions is the catalog of AI functions served over HTTP.
package functions

import (
	"fmt"

	"codeberg.org/todoai/server/internal/aifn"
	"codeberg.org/todoai/server/internal/llm"
)

type Fruit struct {
	Name        string `json:"name" jsonschema:"description=common name of the fruit"`
	Color       string `json:"color"`
	Sweetness   int    `json:"sweetness" jsonschema:"minimum=1,maximum=10"`
	Description string `json:"description"`
}

var countParam = aifn.Param{
	Name:        "n",
	Type:        aifn.TypeInteger,
	Description: "how many items to return",
	Validate:    "gte=0,lte=50",
}

func withDefault(p aifn.Param, v any) aifn.Param {
	p.Default = v
	return p
}

func required(p aifn.Param) aifn.Param {
	p.Required = true
	return p
}

// builds every catalog function against client and registers them
func Register(reg *aifn.Registry, client llm.ChatCompleter) error {
	listFruit, err := aifn.New[[]string](client, aifn.Definition{
		Name:        "list_fruit",
		Description: "Returns a list of n fruit.",
		Params:      []aifn.Param{withDefault(countParam, 2)},
		LengthParam: countParam.Name,
	})
	if err != nil {
		return fmt.Errorf("list_fruit: %w", err)
	}

	listFruitColor, err := aifn.New[[]string](client, aifn.Definition{
		Name:        "list_fruit_color",
		Description: "Returns a list of n fruit that all have the provided color, if any.",
		Params: []aifn.Param{
			required(countParam),
			{Name: "color", Type: aifn.TypeString, Description: "optional color filter"},
		},
		LengthParam: countParam.Name,
	})
	if err != nil {
		return fmt.Errorf("list_fruit_color: %w", err)
	}

	generateVegetables, err := aifn.New[[]string](client, aifn.Definition{
		Name:        "generate_vegetables",
		Description: "Generates a list of n vegetables.",
		Params:      []aifn.Param{withDefault(countParam, 3)},
		LengthParam: countParam.Name,
	})
	if err != nil {
		return fmt.Errorf("generate_vegetables: %w", err)
	}

	describeFruit, err := aifn.New[Fruit](client, aifn.Definition{
		Name:        "describe_fruit",
		Description: "Describes the fruit that best matches the description.",
		Params: []aifn.Param{
			{Name: "description", Type: aifn.TypeString, Required: true, Validate: "min=1,max=500"},
		},
		Returns: "Fruit",
	})
	if err != nil {
		return fmt.Errorf("describe_fruit: %w", err)
	}

	isFruit, err := aifn.New[bool](client, aifn.Definition{
		Name:        "is_fruit",
		Description: "Returns true if the provided name is a fruit.",
		Params: []aifn.Param{
			{Name: "name", Type: aifn.TypeString, Required: true, Validate: "min=1"},
		},
	})
	if err != nil {
		return fmt.Errorf("is_fruit: %w", err)
	}

	return reg.Register(listFruit, listFruitColor, generateVegetables, describeFruit, isFruit)
}
