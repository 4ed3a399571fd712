package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
)

const versionEndpointValueNotSet = "not-set"

// NewVersionEndpoint reports the build version and revision along with the adapter profile version.
func NewVersionEndpoint(version, revision, adapterVersion string) http.HandlerFunc {
	response, err := prepareVersionEndpointResponse(version, revision, adapterVersion)
	if err != nil {
		glog.Fatalf("error creating /version endpoint response: %v", err)
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(response)
	}
}

func prepareVersionEndpointResponse(version, revision, adapterVersion string) (json.RawMessage, error) {
	if version == "" {
		version = versionEndpointValueNotSet
	}
	if revision == "" {
		revision = versionEndpointValueNotSet
	}

	return json.Marshal(struct {
		Revision       string `json:"revision"`
		Version        string `json:"version"`
		AdapterVersion string `json:"adapterVersion"`
	}{
		Revision:       revision,
		Version:        version,
		AdapterVersion: adapterVersion,
	})
}
