package cliconfig

import (
	"path/filepath"
	"testing"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Profiles) != 0 {
		t.Fatal("missing file should load empty")
	}
	c.Profiles["default"] = Profile{Server: "10.0.0.1:3333", CacheSize: 64}
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	c, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p := c.Profiles["default"]
	if p.Server != "10.0.0.1:3333" || p.CacheSize != 64 {
		t.Fatalf("got %+v", p)
	}
}
