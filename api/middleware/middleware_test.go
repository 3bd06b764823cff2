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
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/minitug/reckon/config"
)

func testRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func doGet(router *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for key, value := range header {
		req.Header.Set(key, value)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitMiddlewareDisabledWithoutConfig(t *testing.T) {
	cnf := &config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost/reckon"},
		Redis:      config.RedisConfig{Dns: "localhost:6379"},
	}
	config.MockConfig(cnf)

	router := testRouter(RateLimitMiddleware(cnf))

	for i := 0; i < 20; i++ {
		resp := doGet(router, nil)
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}

func TestRateLimitMiddlewareThrottlesBursts(t *testing.T) {
	rps := 1.0
	burst := 1
	cleanup := 60
	cnf := &config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost/reckon"},
		Redis:      config.RedisConfig{Dns: "localhost:6379"},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond:  &rps,
			Burst:              &burst,
			CleanupIntervalSec: &cleanup,
		},
	}
	config.MockConfig(cnf)

	router := testRouter(RateLimitMiddleware(cnf))

	assert.Equal(t, http.StatusOK, doGet(router, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, nil).Code)
}

func TestSecretKeyAuthMiddleware(t *testing.T) {
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost/reckon"},
		Redis:      config.RedisConfig{Dns: "localhost:6379"},
		Server:     config.ServerConfig{Secure: true, SecretKey: "test-key"},
	})

	router := testRouter(SecretKeyAuthMiddleware())

	resp := doGet(router, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doGet(router, map[string]string{"X-Reckon-Key": "wrong-key"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doGet(router, map[string]string{"X-Reckon-Key": "test-key"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestSecretKeyAuthMiddlewareRejectsWhenUnconfigured(t *testing.T) {
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost/reckon"},
		Redis:      config.RedisConfig{Dns: "localhost:6379"},
		Server:     config.ServerConfig{Secure: true},
	})

	router := testRouter(SecretKeyAuthMiddleware())

	resp := doGet(router, map[string]string{"X-Reckon-Key": "anything"})
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
