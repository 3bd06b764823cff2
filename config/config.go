/*
Copyright 2025 The Reckon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"

	// Defaults for the reporting aggregator.
	DefaultRecentMatches        = 20
	DefaultRunwayTrailingMonths = 3
	DefaultTopARLimit           = 10
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"RECKON_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"RECKON_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"RECKON_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"RECKON_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"RECKON_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"RECKON_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"RECKON_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"RECKON_REDIS_DNS"`
}

// RateLimitConfig holds the rate limiting settings. Nil values disable rate
// limiting.
type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"RECKON_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"RECKON_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"RECKON_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

// ReconciliationConfig tunes the engine's reporting and summary behavior.
// Matching tolerances are per-run and arrive with each reconcile request,
// not here.
type ReconciliationConfig struct {
	RecentMatches        int `json:"recent_matches" envconfig:"RECKON_RECENT_MATCHES"`
	RunwayTrailingMonths int `json:"runway_trailing_months" envconfig:"RECKON_RUNWAY_TRAILING_MONTHS"`
	TopARLimit           int `json:"top_ar_limit" envconfig:"RECKON_TOP_AR_LIMIT"`
}

type Configuration struct {
	ProjectName    string               `json:"project_name" envconfig:"RECKON_PROJECT_NAME"`
	Server         ServerConfig         `json:"server"`
	DataSource     DataSourceConfig     `json:"data_source"`
	Redis          RedisConfig          `json:"redis"`
	RateLimit      RateLimitConfig      `json:"rate_limit"`
	Reconciliation ReconciliationConfig `json:"reconciliation"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("reckon", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called reckon.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Reckon Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		burst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		cnf.RateLimit.Burst = &burst
	}
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.CleanupIntervalSec == nil {
		cleanup := 10800
		cnf.RateLimit.CleanupIntervalSec = &cleanup
	}

	if cnf.Reconciliation.RecentMatches <= 0 {
		cnf.Reconciliation.RecentMatches = DefaultRecentMatches
	}
	if cnf.Reconciliation.RunwayTrailingMonths <= 0 {
		cnf.Reconciliation.RunwayTrailingMonths = DefaultRunwayTrailingMonths
	}
	if cnf.Reconciliation.TopARLimit <= 0 {
		cnf.Reconciliation.TopARLimit = DefaultTopARLimit
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	_ = mockConfig.validateAndAddDefaults()
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
