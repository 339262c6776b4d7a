package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONClientConfig mirrors [ClientConfig] with JSON tags and string-friendly
// durations, so host applications can ship a config file like:
//
//	{
//	  "app": {"base_url": "https://baas.example.com", "key": "k", "secret": "s"},
//	  "storage": {"db": {"dsn": "/data/driftstore.db"}},
//	  "sync": {"interval": "5m", "delta_set": true}
//	}
type JSONClientConfig struct {
	App struct {
		BaseURL        string   `json:"base_url"`
		AppKey         string   `json:"key"`
		AppSecret      string   `json:"secret"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Credentials struct {
			Path string `json:"path"`
		} `json:"credentials,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		Interval        Duration `json:"interval"`
		ContinueOnError bool     `json:"continue_on_error"`
		DeltaSet        bool     `json:"delta_set"`
	} `json:"sync,omitempty"`
}

func parseJSON(jsonFilePath string) (*ClientConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg JSONClientConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &ClientConfig{
		App: App{
			BaseURL:        jsonCfg.App.BaseURL,
			AppKey:         jsonCfg.App.AppKey,
			AppSecret:      jsonCfg.App.AppSecret,
			RequestTimeout: time.Duration(jsonCfg.App.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Credentials: Credentials{
				Path: jsonCfg.Storage.Credentials.Path,
			},
		},
		Sync: Sync{
			Interval:        time.Duration(jsonCfg.Sync.Interval),
			ContinueOnError: jsonCfg.Sync.ContinueOnError,
			DeltaSet:        jsonCfg.Sync.DeltaSet,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %v", v)
	}
}
