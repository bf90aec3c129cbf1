package agrimind_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/agrimind"
	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/adapters/llm"
	"github.com/aretw0/agrimind/pkg/adapters/memory"
)

// ExampleNew shows the typed facade over a scripted generator. Swap llm.NewFake
// for llm.New with a real provider in production.
func ExampleNew() {
	gen := llm.NewFake().OnJSON(actions.WeatherForecastAction, map[string]any{
		"temperature":         24.5,
		"feelsLike":           26,
		"condition":           "Partly Cloudy",
		"precipitationChance": 20,
		"humidity":            55,
		"windSpeed":           12,
	})

	inv, err := agrimind.New(context.Background(), gen)
	if err != nil {
		log.Fatal(err)
	}

	forecast, err := actions.WeatherForecast(context.Background(), inv, actions.WeatherInput{Location: "Nakuru, Kenya"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s, %.1f°C\n", forecast.Condition, forecast.Temperature)
	// Output: Partly Cloudy, 24.5°C
}

// ExampleNew_validation shows that invalid input fails before any call is made.
func ExampleNew_validation() {
	gen := llm.NewFake()
	inv, err := agrimind.New(context.Background(), gen)
	if err != nil {
		log.Fatal(err)
	}

	res := inv.Run(context.Background(), actions.LocalAdvisoryAction, map[string]any{
		"topic":    "Soil",
		"language": "Swahili",
	})
	fmt.Println(res.Error.Kind)
	for _, f := range res.Error.Fields {
		fmt.Println(f.Field)
	}
	fmt.Println("calls:", len(gen.Requests()))
	// Output:
	// validation
	// topic
	// calls: 0
}

// ExampleWithPromptSource replaces a built-in instruction template.
func ExampleWithPromptSource() {
	prompts := memory.NewPrompts(map[string]string{
		actions.LocalAdvisoryAction: "Write a two-line advisory about {{.topic}} in {{.language}}.",
	})
	gen := llm.NewFake(`{"advisory": "Panda mahindi mapema."}`)

	inv, err := agrimind.New(context.Background(), gen, agrimind.WithPromptSource(prompts))
	if err != nil {
		log.Fatal(err)
	}

	adv, err := actions.LocalAdvisory(context.Background(), inv, actions.AdvisoryInput{Topic: "Maize planting", Language: "Swahili"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(gen.Requests()[0].Prompt)
	fmt.Println(adv.Advisory)
	// Output:
	// Write a two-line advisory about Maize planting in Swahili.
	// Panda mahindi mapema.
}
