package response

import (
	"encoding/json"
	"net/http"
)

// JsonResponse is the envelope every REST endpoint replies with. Data is
// omitted on errors so clients can branch on the Error flag alone.
type JsonResponse struct {
	Error   bool   `json:"error"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// JSON writes the envelope with the given status code.
func JSON(w http.ResponseWriter, status int, data any, isErr bool, msg string) error {
	return JSONWithHeaders(w, status, data, isErr, msg, nil)
}

// JSONWithHeaders is JSON plus extra response headers.
func JSONWithHeaders(w http.ResponseWriter, status int, data any, isErr bool, msg string, headers http.Header) error {
	for key, value := range headers {
		w.Header()[key] = value
	}

	response := JsonResponse{
		Error:   isErr,
		Message: msg,
	}
	if !isErr {
		response.Data = data
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(response)
}
