// cliconfig is the on-disk configuration of jbodctl: named profiles, each
// naming an array server and the cache to put in front of it.
package cliconfig

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
)

const (
	defaultConfigDir  = ".jbod"
	defaultConfigFile = "config.json"
)

type JBODConfig struct {
	Profiles map[string]Profile `json:"profiles"`
}

type Profile struct {
	Server    string `json:"server,omitempty"`
	CacheSize int    `json:"cache-size,omitempty"`
}

// DefaultPath is ~/.jbod/config.json.
func DefaultPath() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("error getting user info: %v", err)
	}
	return filepath.Join(usr.HomeDir, defaultConfigDir, defaultConfigFile), nil
}

// Load reads the config at path. A missing file is an empty config.
func Load(path string) (*JBODConfig, error) {
	c := &JBODConfig{Profiles: map[string]Profile{}}
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %v", path, err)
	}
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	return c, nil
}

// Save writes c to path, creating its directory.
func (c *JBODConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0600)
}
