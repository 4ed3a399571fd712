package endpoints

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// NewStatusEndpoint answers health checks. An empty response means 204.
func NewStatusEndpoint(response string) httprouter.Handle {
	if response == "" {
		return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusNoContent)
		}
	}

	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Write([]byte(response))
	}
}
