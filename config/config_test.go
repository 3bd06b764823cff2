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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reckon.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"project_name": "reckon-test",
		"data_source": {"dns": "postgres://postgres:@localhost:5432/reckon?sslmode=disable"},
		"redis": {"dns": "localhost:6379"}
	}`)

	require.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "reckon-test", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, DefaultRecentMatches, cnf.Reconciliation.RecentMatches)
	assert.Equal(t, DefaultRunwayTrailingMonths, cnf.Reconciliation.RunwayTrailingMonths)
	assert.Equal(t, DefaultTopARLimit, cnf.Reconciliation.TopARLimit)
}

func TestInitConfigRequiresDataSource(t *testing.T) {
	path := writeConfigFile(t, `{"redis": {"dns": "localhost:6379"}}`)

	err := InitConfig(path)
	assert.Error(t, err)
}

func TestInitConfigRequiresRedis(t *testing.T) {
	path := writeConfigFile(t, `{"data_source": {"dns": "postgres://localhost/reckon"}}`)

	err := InitConfig(path)
	assert.Error(t, err)
}

func TestEnvOverridesFileValues(t *testing.T) {
	t.Setenv("RECKON_SERVER_PORT", "6001")
	path := writeConfigFile(t, `{
		"server": {"port": "5005"},
		"data_source": {"dns": "postgres://localhost/reckon"},
		"redis": {"dns": "localhost:6379"}
	}`)

	require.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "6001", cnf.Server.Port)
}

func TestRateLimitDefaults(t *testing.T) {
	rps := 10.0
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost/reckon"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
		RateLimit:  RateLimitConfig{RequestsPerSecond: &rps},
	}

	MockConfig(cnf)

	fetched, err := Fetch()
	require.NoError(t, err)
	require.NotNil(t, fetched.RateLimit.Burst)
	assert.Equal(t, 20, *fetched.RateLimit.Burst)
	require.NotNil(t, fetched.RateLimit.CleanupIntervalSec)
	assert.Equal(t, 10800, *fetched.RateLimit.CleanupIntervalSec)
}

func TestMockConfigAppliesDefaults(t *testing.T) {
	MockConfig(&Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost/reckon"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
	})

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "Reckon Server", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
}
