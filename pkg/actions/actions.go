package actions

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
	"github.com/aretw0/agrimind/pkg/prompt"
	"github.com/aretw0/agrimind/pkg/registry"
	"github.com/aretw0/agrimind/pkg/schema"
)

// Built-in action names.
const (
	PredictYieldAction    = "predict-yield"
	RecommendCropAction   = "recommend-crop"
	DetectPestsAction     = "detect-pests"
	LocalAdvisoryAction   = "local-advisory"
	WeatherForecastAction = "weather-forecast"
	SendSMSAction         = "send-sms"
	ChatAction            = "chat"
)

// PhonePattern is the accepted international phone number format.
const PhonePattern = `^\+[1-9]\d{6,14}$`

// WeatherConditions are the values weather-forecast may report.
var WeatherConditions = []string{
	"Sunny", "Partly Cloudy", "Cloudy", "Rainy", "Stormy", "Snowy", "Windy", "Foggy",
}

// ErrNoSMSGateway is returned by send-sms when Deps.SMS is nil.
var ErrNoSMSGateway = errors.New("no SMS gateway configured")

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Deps are the collaborators the built-in actions need.
type Deps struct {
	// SMS delivers send-sms messages.
	SMS ports.SMSGateway
	// Prompts optionally overrides built-in instruction templates by action name.
	Prompts ports.PromptSource
}

// Builtins returns the specs of every built-in action, sorted by name.
func Builtins(deps Deps) []domain.ActionSpec {
	return []domain.ActionSpec{
		chatSpec(),
		detectPestsSpec(),
		localAdvisorySpec(),
		predictYieldSpec(),
		recommendCropSpec(),
		sendSMSSpec(deps.SMS),
		weatherForecastSpec(),
	}
}

// RegisterAll registers every built-in action, applying prompt overrides
// from deps.Prompts first.
func RegisterAll(ctx context.Context, reg *registry.Registry, deps Deps) error {
	for _, spec := range Builtins(deps) {
		if deps.Prompts != nil {
			body, ok, err := deps.Prompts.Prompt(ctx, spec.Name)
			if err != nil {
				return fmt.Errorf("load prompt for %s: %w", spec.Name, err)
			}
			if ok {
				tmpl, err := prompt.Compile(spec.Name, body)
				if err != nil {
					return fmt.Errorf("%w: prompt override for %s: %w", domain.ErrInvalidSpec, spec.Name, err)
				}
				spec.Template = tmpl
			}
		}
		if err := reg.Register(spec); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding every built-in action.
func NewRegistry(ctx context.Context, deps Deps) (*registry.Registry, error) {
	reg := registry.NewRegistry()
	if err := RegisterAll(ctx, reg, deps); err != nil {
		return nil, err
	}
	return reg, nil
}

// DefaultPrompt returns the built-in template body for an action.
func DefaultPrompt(action string) (string, bool) {
	b, err := promptFS.ReadFile("prompts/" + action + ".tmpl")
	if err != nil {
		return "", false
	}
	return string(b), true
}

func builtinTemplate(action string) domain.TemplateFunc {
	body, ok := DefaultPrompt(action)
	if !ok {
		panic("actions: missing built-in prompt for " + action)
	}
	return prompt.Func(prompt.Must(action, body))
}

func predictYieldSpec() domain.ActionSpec {
	return domain.ActionSpec{
		Name:        PredictYieldAction,
		Description: "Predicts the yield range of a crop from soil, weather and historical data.",
		Input: schema.Schema{
			"cropType":                  schema.String(schema.MinLen(2), schema.Describe("The type of crop, e.g. Corn.")),
			"soilData":                  schema.String(schema.MinLen(10), schema.Describe("Soil composition and quality.")),
			"weatherPatterns":           schema.String(schema.MinLen(10), schema.Describe("Recent and expected weather.")),
			"historicalCropPerformance": schema.String(schema.MinLen(10), schema.Describe("Yields of previous seasons.")),
		},
		Output: schema.Schema{
			"yieldRange":              schema.String(schema.Describe("Predicted yield range, e.g. 4-5 tons/hectare.")),
			"confidenceLevel":         schema.String(schema.Describe("Confidence in the prediction.")),
			"factorsInfluencingYield": schema.String(schema.Describe("Main factors behind the prediction.")),
		},
		Template: builtinTemplate(PredictYieldAction),
	}
}

func recommendCropSpec() domain.ActionSpec {
	nonNegative := schema.Min(0)
	return domain.ActionSpec{
		Name:        RecommendCropAction,
		Description: "Recommends suitable crops for a field from soil and climate measurements.",
		Input: schema.Schema{
			"soilData": schema.Object(schema.Schema{
				"nitrogenLevel":        schema.Number(nonNegative, schema.Describe("Nitrogen in ppm.")),
				"phosphorusLevel":      schema.Number(nonNegative, schema.Describe("Phosphorus in ppm.")),
				"potassiumLevel":       schema.Number(nonNegative, schema.Describe("Potassium in ppm.")),
				"pHLevel":              schema.Number(schema.Range(0, 14), schema.Describe("Soil pH.")),
				"organicMatterContent": schema.Number(nonNegative, schema.Describe("Organic matter in percent.")),
				"texture":              schema.String(schema.MinLen(2), schema.Describe("Soil texture: sandy, loamy, clayey.")),
			}),
			"climateData": schema.Object(schema.Schema{
				"averageRainfall":     schema.Number(nonNegative, schema.Describe("Rainfall in mm per year.")),
				"averageTemperature":  schema.Number(schema.Describe("Temperature in degrees Celsius.")),
				"growingSeasonLength": schema.Number(nonNegative, schema.Describe("Growing season in days.")),
				"humidity":            schema.Number(schema.Range(0, 100), schema.Describe("Humidity in percent.")),
			}),
			"location": schema.String(schema.MinLen(2), schema.Describe("Where the field is.")),
		},
		Output: schema.Schema{
			"recommendations": schema.Slice(schema.Object(schema.Schema{
				"cropType":       schema.String(),
				"yieldEstimate":  schema.String(schema.Describe("Expected yield, e.g. 2-3 tons/hectare.")),
				"riskAssessment": schema.String(),
				"additionalTips": schema.String(),
			}), schema.Min(1)),
		},
		Template: builtinTemplate(RecommendCropAction),
	}
}

func detectPestsSpec() domain.ActionSpec {
	return domain.ActionSpec{
		Name:        DetectPestsAction,
		Description: "Diagnoses pests and diseases from a photo of a plant.",
		Input: schema.Schema{
			"photoDataUri": schema.DataURI(schema.Describe("Photo of the plant as data:<mimetype>;base64,<data>.")),
		},
		Output: schema.Schema{
			"hasPestsOrDiseases":  schema.Bool(),
			"identification":      schema.String(schema.Describe("Name of the pest or disease, or Healthy.")),
			"confidence":          schema.Number(schema.Range(0, 1)),
			"treatmentSuggestion": schema.String(schema.Describe("Treatment, or a maintenance tip for healthy plants.")),
		},
		Template:   builtinTemplate(DetectPestsAction),
		Attachment: "photoDataUri",
	}
}

func localAdvisorySpec() domain.ActionSpec {
	return domain.ActionSpec{
		Name:        LocalAdvisoryAction,
		Description: "Writes a farming advisory on a topic in a local language.",
		Input: schema.Schema{
			"topic":    schema.String(schema.MinLen(5), schema.Describe("Advisory topic, e.g. Pest Control for Corn.")),
			"language": schema.String(schema.MinLen(2), schema.Describe("Language to write in, e.g. Swahili.")),
		},
		Output: schema.Schema{
			"advisory": schema.String(),
		},
		Template: builtinTemplate(LocalAdvisoryAction),
	}
}

func weatherForecastSpec() domain.ActionSpec {
	percent := schema.Range(0, 100)
	return domain.ActionSpec{
		Name:        WeatherForecastAction,
		Description: "Forecasts the current weather for a location.",
		Input: schema.Schema{
			"location": schema.String(schema.MinLen(2), schema.Describe("Location, e.g. Napa Valley, CA.")),
		},
		Output: schema.Schema{
			"temperature":         schema.Number(schema.Describe("Temperature in degrees Celsius.")),
			"feelsLike":           schema.Number(schema.Describe("Felt temperature in degrees Celsius.")),
			"condition":           schema.Enum(WeatherConditions),
			"precipitationChance": schema.Number(percent),
			"humidity":            schema.Number(percent),
			"windSpeed":           schema.Number(schema.Min(0), schema.Describe("Wind speed in km/h.")),
		},
		Template: builtinTemplate(WeatherForecastAction),
	}
}

func sendSMSSpec(gateway ports.SMSGateway) domain.ActionSpec {
	return domain.ActionSpec{
		Name:        SendSMSAction,
		Description: "Sends a text message to a phone number.",
		Input: schema.Schema{
			"phoneNumber": schema.String(schema.Pattern(PhonePattern), schema.Describe("International format, e.g. +15551234567.")),
			"message":     schema.String(schema.MinLen(5), schema.MaxLen(160)),
		},
		Output: schema.Schema{
			"status":    schema.Enum([]string{domain.SMSSent, domain.SMSFailed}),
			"messageId": schema.String(),
		},
		Template: builtinTemplate(SendSMSAction),
		// The validated message is delivered as is; the instruction is unused.
		Direct: func(ctx context.Context, input map[string]any, _ string) (map[string]any, error) {
			if gateway == nil {
				return nil, ErrNoSMSGateway
			}
			phone, _ := input["phoneNumber"].(string)
			message, _ := input["message"].(string)
			receipt, err := gateway.Send(ctx, phone, message)
			if err != nil {
				return nil, err
			}
			return map[string]any{"status": receipt.Status, "messageId": receipt.MessageID}, nil
		},
	}
}

func chatSpec() domain.ActionSpec {
	return domain.ActionSpec{
		Name:        ChatAction,
		Description: "Answers a farmer's message in the context of the conversation so far.",
		Input: schema.Schema{
			"history": schema.Slice(schema.Object(schema.Schema{
				"role":    schema.Enum([]string{domain.RoleUser, domain.RoleModel}),
				"content": schema.String(),
			}), schema.Describe("Earlier turns, oldest first.")),
			"message": schema.String(schema.MinLen(1)),
		},
		Output: schema.Schema{
			"response": schema.String(),
		},
		Template:  builtinTemplate(ChatAction),
		TextField: "response",
	}
}
