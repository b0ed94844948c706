package studio

import (
	"encoding/json"
	"errors"
	"net/http"

	"chromadish/internal/catalog"
	"chromadish/internal/imaging"
	"chromadish/internal/mockup"
	"chromadish/internal/storage"
)

var (
	errBadRequest   = errors.New("studio: bad request")
	errMissingImage = errors.New("studio: image is required")

	errRequestTooLarge = errors.New("studio: request body too large")
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, resp := describe(err)
	writeJSON(w, status, resp)
}

// describe maps an error to its status code and client-facing body.
func describe(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, errMissingImage):
		return http.StatusBadRequest, errorResponse{Error: "Please upload an image.", Kind: "missing_image"}
	case errors.Is(err, errRequestTooLarge):
		return http.StatusRequestEntityTooLarge, errorResponse{Error: "Request too large.", Kind: "request_too_large"}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorResponse{Error: "Invalid request.", Kind: "bad_request"}
	case errors.Is(err, catalog.ErrUnknownOption):
		return http.StatusBadRequest, errorResponse{Error: "Unknown studio option.", Kind: "unknown_option"}
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "Generation not found.", Kind: "not_found"}
	}

	resp := errorResponse{Error: mockup.UserMessage(err), Kind: mockup.Kind(err)}
	switch {
	case errors.Is(err, imaging.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, resp
	case errors.Is(err, imaging.ErrRead),
		errors.Is(err, imaging.ErrDecode),
		errors.Is(err, mockup.ErrInvalidStrictness):
		return http.StatusBadRequest, resp
	case errors.Is(err, mockup.ErrContentBlocked):
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, mockup.ErrNoImageGenerated),
		errors.Is(err, mockup.ErrGenerationFailed),
		errors.Is(err, mockup.ErrMalformedResponse),
		errors.Is(err, mockup.ErrVariationFetchFailed):
		return http.StatusBadGateway, resp
	case errors.Is(err, imaging.ErrEnvironment):
		return http.StatusInternalServerError, resp
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Something went wrong. Please try again.", Kind: "internal"}
	}
}
