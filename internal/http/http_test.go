package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/net/context"

	"github.com/coreos/jbod"
	"github.com/coreos/jbod/storage"
)

func TestStatus(t *testing.T) {
	cfg := jbod.DefaultConfig()
	e, err := storage.NewTemp("http", cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	e.Execute(context.TODO(), jbod.MountOp(), nil)

	srv := httptest.NewServer(NewHandler(e))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Kind != "temp" || !st.Mounted || st.NumBlocks != 16*256 {
		t.Fatalf("status %+v", st)
	}
}

func TestMetrics(t *testing.T) {
	e, _ := storage.NewTemp("http-metrics", jbod.DefaultConfig())
	defer e.Close()
	srv := httptest.NewServer(NewHandler(e))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "jbod_storage_blocks_total") {
		t.Fatal("storage metrics not exported")
	}
}
