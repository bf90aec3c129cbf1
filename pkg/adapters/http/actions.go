package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/schema"
	"github.com/go-chi/chi/v5"
)

func (s *Server) lookup(name string) *domain.ActionSpec {
	for _, spec := range s.runner.Actions() {
		if spec.Name == name {
			return spec
		}
	}
	return nil
}

// ListActions handles the GET /v1/actions request.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	specs := s.runner.Actions()
	infos := make([]domain.ActionInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, spec.Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

// GetAction handles the GET /v1/actions/{name} request.
func (s *Server) GetAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	spec := s.lookup(name)
	if spec == nil {
		writeFailure(w, http.StatusNotFound, domain.KindUnknownAction, fmt.Sprintf("%s: %s", domain.ErrActionNotFound, name))
		return
	}
	writeJSON(w, http.StatusOK, spec.Info())
}

// RunAction handles the POST /v1/actions/{name} request. The body is a JSON
// object, a urlencoded form or a multipart form whose file part fills the
// action's attachment field.
func (s *Server) RunAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	spec := s.lookup(name)
	if spec == nil {
		result := domain.Failed(name, fmt.Errorf("%w: %s", domain.ErrActionNotFound, name))
		writeJSON(w, http.StatusNotFound, result)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	input, err := decodeInput(r, spec)
	if err != nil {
		s.logger.Warn("RunAction: invalid request body", "action", name, "error", err)
		writeFailure(w, http.StatusBadRequest, domain.KindValidation, "invalid request body: "+err.Error())
		return
	}

	result := s.runner.Run(r.Context(), name, input)
	status := http.StatusOK
	if !result.OK() {
		status = statusFor(result.Error.Kind)
		s.logger.Debug("RunAction: action failed", "action", name, "kind", result.Error.Kind, "status", status)
	}
	writeJSON(w, status, result)
}

func decodeInput(r *http.Request, spec *domain.ActionSpec) (map[string]any, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return schema.FromValues(spec.Input, r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, err
		}
		input := schema.FromValues(spec.Input, url.Values(r.MultipartForm.Value))
		if spec.Attachment != "" {
			uri, ok, err := attachmentFromFile(r, spec.Attachment)
			if err != nil {
				return nil, err
			}
			if ok {
				input[spec.Attachment] = uri
			}
		}
		return input, nil
	default:
		return decodeJSONObject(r.Body)
	}
}

func decodeJSONObject(body io.Reader) (map[string]any, error) {
	var input map[string]any
	if err := json.NewDecoder(body).Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

// attachmentFromFile reads an uploaded file into a data URI.
func attachmentFromFile(r *http.Request, field string) (string, bool, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", false, err
	}
	mimeType := hdr.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), true, nil
}
