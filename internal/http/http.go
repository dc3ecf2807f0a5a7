// http serves the debug and metrics endpoints of a jbod server.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreos/jbod"
)

// Array is what the status endpoint reports on.
type Array interface {
	Kind() string
	Mounted() bool
	UsedBlocks() uint64
	NumBlocks() uint64
}

type Status struct {
	Version    string `json:"version"`
	Kind       string `json:"kind"`
	Mounted    bool   `json:"mounted"`
	UsedBlocks uint64 `json:"used_blocks"`
	NumBlocks  uint64 `json:"num_blocks"`
}

func ServeHTTP(addr string, arr Array) error {
	return http.ListenAndServe(addr, NewHandler(arr))
}

func NewHandler(arr Array) *httprouter.Router {
	h := httprouter.New()
	h.Handler("GET", "/metrics", promhttp.Handler())
	h.GET("/status", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		st := Status{
			Version:    jbod.Version,
			Kind:       arr.Kind(),
			Mounted:    arr.Mounted(),
			UsedBlocks: arr.UsedBlocks(),
			NumBlocks:  arr.NumBlocks(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return h
}
