package interfaces

import (
	"errors"
	"net/http"

	"rule37-cloud/internal/rule37/application"
	rule37 "rule37-cloud/internal/rule37/domain"
)

func respondServiceError(w http.ResponseWriter, err error) {
	var validation *application.ValidationError
	if errors.As(err, &validation) {
		http.Error(w, validation.Message, http.StatusBadRequest)
		return
	}
	if errors.Is(err, rule37.ErrRunNotFound) {
		http.Error(w, "calculation run not found", http.StatusNotFound)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}
