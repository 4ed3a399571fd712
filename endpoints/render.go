package endpoints

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/aolhtb/render"
)

type renderEndpoint struct {
	service render.Service
}

// NewRenderEndpoint serves registered demand as an HTML document. Each ad renders once.
func NewRenderEndpoint(service render.Service) httprouter.Handle {
	e := &renderEndpoint{service: service}
	return e.Handle
}

func (e *renderEndpoint) Handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	adID := ps.ByName("adId")

	var doc bytes.Buffer
	if err := e.service.Render(&doc, adID); err != nil {
		if errors.Is(err, render.ErrAdNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		glog.Errorf("Failed to render ad %s: %v", adID, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(doc.Bytes())
}
