/*
Package agrimind invokes AI-backed agricultural actions through typed, validated
contracts.

Every capability (yield prediction, crop recommendation, pest detection from a
photo, local-language advisories, weather forecasts, SMS notifications and the
AgriBot chat) is an action: a name, an input schema, an output schema and an
instruction template. One generic invoker validates the input, renders the
instruction, makes exactly one call to a text-generation service and validates
the reply before returning it.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/agrimind"
		"github.com/aretw0/agrimind/pkg/actions"
		"github.com/aretw0/agrimind/pkg/adapters/llm"
	)

	func main() {
		ctx := context.Background()
		gen, err := llm.New(ctx, llm.Config{Provider: llm.ProviderGemini, APIKey: "..."})
		if err != nil {
			log.Fatal(err)
		}
		inv, err := agrimind.New(ctx, gen)
		if err != nil {
			log.Fatal(err)
		}

		out, err := actions.PredictYield(ctx, inv, actions.YieldInput{
			CropType:                  "Corn",
			SoilData:                  "Loam, pH 6.5",
			WeatherPatterns:           "moderate rain, 25°C",
			HistoricalCropPerformance: "4 t/ha previous years",
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out.YieldRange)
	}

# Failures

Invocations fail with a *domain.ActionError whose kind is matched with
errors.Is: domain.ErrValidation (no call was made), domain.ErrTransport,
domain.ErrSchemaMismatch or domain.ErrEmptyResponse.

# Surfaces

The same invoker backs the HTTP API (pkg/adapters/http), the MCP server
(pkg/adapters/mcp) and the agrimind CLI (cmd/agrimind).
*/
package agrimind
