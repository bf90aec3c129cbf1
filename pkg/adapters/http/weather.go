package http

import (
	"net/http"
	"strings"

	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/adapters/geocode"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/oapi-codegen/runtime"
)

type localWeather struct {
	Location string `json:"location"`
	domain.ActionResult
}

// GetLocalWeather handles the GET /v1/weather/local request. Coordinates are
// reverse-geocoded; without them the configured default location is used.
func (s *Server) GetLocalWeather(w http.ResponseWriter, r *http.Request) {
	var lat, lon *float64
	if err := runtime.BindQueryParameter("form", true, false, "lat", r.URL.Query(), &lat); err != nil {
		writeFailure(w, http.StatusBadRequest, domain.KindValidation, "invalid lat: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "lon", r.URL.Query(), &lon); err != nil {
		writeFailure(w, http.StatusBadRequest, domain.KindValidation, "invalid lon: "+err.Error())
		return
	}

	var location string
	switch {
	case lat != nil && lon != nil:
		if err := geocode.ValidateCoordinates(*lat, *lon); err != nil {
			writeFailure(w, http.StatusBadRequest, domain.KindValidation, err.Error())
			return
		}
		location = geocode.Describe(r.Context(), s.geocoder, *lat, *lon)
	case lat != nil || lon != nil:
		writeFailure(w, http.StatusBadRequest, domain.KindValidation, "lat and lon must be given together")
		return
	default:
		location = s.defaultLocation
	}
	if location == "" {
		writeFailure(w, http.StatusBadRequest, domain.KindValidation, "no coordinates given and no default location configured")
		return
	}

	result := s.runner.Run(r.Context(), actions.WeatherForecastAction, map[string]any{"location": location})
	status := http.StatusOK
	if !result.OK() {
		status = statusFor(result.Error.Kind)
	}
	writeJSON(w, status, localWeather{Location: location, ActionResult: result})
}

// GetSeasonal handles the GET /v1/seasonal request. With ?crop= it returns
// the windows of that crop only. Clients accepting text/markdown get the
// calendar as tables.
func (s *Server) GetSeasonal(w http.ResponseWriter, r *http.Request) {
	cal, err := actions.Seasonal()
	if err != nil {
		s.logger.Error("GetSeasonal: calendar unavailable", "error", err)
		writeFailure(w, http.StatusInternalServerError, domain.KindInternal, err.Error())
		return
	}

	if crop := r.URL.Query().Get("crop"); crop != "" {
		planting, harvest := cal.ForCrop(crop)
		if planting == nil && harvest == nil {
			writeFailure(w, http.StatusNotFound, kindNotFound, "no seasonal windows for "+crop)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"crop":     crop,
			"planting": planting,
			"harvest":  harvest,
		})
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(cal.Markdown()))
		return
	}
	writeJSON(w, http.StatusOK, cal)
}
