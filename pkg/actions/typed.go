package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Invoker runs a registered action by name.
// *invoker.Invoker satisfies it.
type Invoker interface {
	InvokeByName(ctx context.Context, name string, input map[string]any) (map[string]any, error)
}

// YieldInput is the input of predict-yield.
type YieldInput struct {
	CropType                  string `json:"cropType"`
	SoilData                  string `json:"soilData"`
	WeatherPatterns           string `json:"weatherPatterns"`
	HistoricalCropPerformance string `json:"historicalCropPerformance"`
}

// YieldPrediction is the output of predict-yield.
type YieldPrediction struct {
	YieldRange              string `json:"yieldRange"`
	ConfidenceLevel         string `json:"confidenceLevel"`
	FactorsInfluencingYield string `json:"factorsInfluencingYield"`
}

// SoilData describes a soil sample; pHLevel is 0 to 14.
type SoilData struct {
	NitrogenLevel        float64 `json:"nitrogenLevel"`
	PhosphorusLevel      float64 `json:"phosphorusLevel"`
	PotassiumLevel       float64 `json:"potassiumLevel"`
	PHLevel              float64 `json:"pHLevel"`
	OrganicMatterContent float64 `json:"organicMatterContent"`
	Texture              string  `json:"texture"`
}

// ClimateData describes the local climate; humidity is a percentage.
type ClimateData struct {
	AverageRainfall     float64 `json:"averageRainfall"`
	AverageTemperature  float64 `json:"averageTemperature"`
	GrowingSeasonLength float64 `json:"growingSeasonLength"`
	Humidity            float64 `json:"humidity"`
}

// CropInput is the input of recommend-crop.
type CropInput struct {
	SoilData    SoilData    `json:"soilData"`
	ClimateData ClimateData `json:"climateData"`
	Location    string      `json:"location"`
}

// CropRecommendation is one suggested crop.
type CropRecommendation struct {
	CropType       string `json:"cropType"`
	YieldEstimate  string `json:"yieldEstimate"`
	RiskAssessment string `json:"riskAssessment"`
	AdditionalTips string `json:"additionalTips"`
}

// CropRecommendations is the output of recommend-crop.
type CropRecommendations struct {
	Recommendations []CropRecommendation `json:"recommendations"`
}

// PestInput is the input of detect-pests. PhotoDataURI is a data: URI.
type PestInput struct {
	PhotoDataURI string `json:"photoDataUri"`
}

// PestDiagnosis is the output of detect-pests. Confidence is 0 to 1.
type PestDiagnosis struct {
	HasPestsOrDiseases  bool    `json:"hasPestsOrDiseases"`
	Identification      string  `json:"identification"`
	Confidence          float64 `json:"confidence"`
	TreatmentSuggestion string  `json:"treatmentSuggestion"`
}

// AdvisoryInput is the input of local-advisory.
type AdvisoryInput struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
}

// Advisory is the output of local-advisory.
type Advisory struct {
	Advisory string `json:"advisory"`
}

// WeatherInput is the input of weather-forecast.
type WeatherInput struct {
	Location string `json:"location"`
}

// Forecast is the output of weather-forecast.
type Forecast struct {
	Temperature         float64 `json:"temperature"`
	FeelsLike           float64 `json:"feelsLike"`
	Condition           string  `json:"condition"`
	PrecipitationChance float64 `json:"precipitationChance"`
	Humidity            float64 `json:"humidity"`
	WindSpeed           float64 `json:"windSpeed"`
}

// SMSInput is the input of send-sms.
type SMSInput struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// ChatInput is the input of chat. History is oldest first and is sent as is.
type ChatInput struct {
	History []domain.ChatMessage `json:"history"`
	Message string               `json:"message"`
}

// ChatReply is the output of chat.
type ChatReply struct {
	Response string `json:"response"`
}

// PredictYield invokes predict-yield.
func PredictYield(ctx context.Context, inv Invoker, in YieldInput) (*YieldPrediction, error) {
	return call[YieldPrediction](ctx, inv, PredictYieldAction, in)
}

// RecommendCrop invokes recommend-crop.
func RecommendCrop(ctx context.Context, inv Invoker, in CropInput) (*CropRecommendations, error) {
	return call[CropRecommendations](ctx, inv, RecommendCropAction, in)
}

// DetectPests invokes detect-pests with the photo as an attachment.
func DetectPests(ctx context.Context, inv Invoker, in PestInput) (*PestDiagnosis, error) {
	return call[PestDiagnosis](ctx, inv, DetectPestsAction, in)
}

// LocalAdvisory invokes local-advisory.
func LocalAdvisory(ctx context.Context, inv Invoker, in AdvisoryInput) (*Advisory, error) {
	return call[Advisory](ctx, inv, LocalAdvisoryAction, in)
}

// WeatherForecast invokes weather-forecast.
func WeatherForecast(ctx context.Context, inv Invoker, in WeatherInput) (*Forecast, error) {
	return call[Forecast](ctx, inv, WeatherForecastAction, in)
}

// SendSMS invokes send-sms. A Failed receipt is not an error.
func SendSMS(ctx context.Context, inv Invoker, in SMSInput) (*domain.SMSReceipt, error) {
	return call[domain.SMSReceipt](ctx, inv, SendSMSAction, in)
}

// Chat invokes chat for one turn. The caller owns the history.
func Chat(ctx context.Context, inv Invoker, in ChatInput) (*ChatReply, error) {
	if in.History == nil {
		in.History = []domain.ChatMessage{}
	}
	return call[ChatReply](ctx, inv, ChatAction, in)
}

func call[Out any](ctx context.Context, inv Invoker, action string, in any) (*Out, error) {
	record, err := toRecord(in)
	if err != nil {
		var unsupported *json.UnsupportedValueError
		if errors.As(err, &unsupported) {
			// NaN and infinities have no JSON form and never satisfy a range.
			return nil, domain.NewActionError(domain.ErrValidation, action, err)
		}
		return nil, domain.NewActionError(domain.ErrInternal, action, err)
	}
	output, err := inv.InvokeByName(ctx, action, record)
	if err != nil {
		return nil, err
	}
	out := new(Out)
	if err := Decode(output, out); err != nil {
		return nil, domain.NewActionError(domain.ErrSchemaMismatch, action, err)
	}
	return out, nil
}

// Decode copies an output record into a typed struct using its json tags.
func Decode(record map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(record); err != nil {
		return fmt.Errorf("decode output: %w", err)
	}
	return nil
}

// toRecord flattens a typed input into the generic record form,
// including nested structs and slices of structs.
func toRecord(in any) (map[string]any, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(b, &record); err != nil {
		return nil, err
	}
	return record, nil
}
