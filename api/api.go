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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minitug/reckon"
	"github.com/minitug/reckon/api/middleware"
	"github.com/minitug/reckon/config"
)

type Api struct {
	reckon *reckon.Reckon
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/reconcile", a.RunReconciliation)

	router.GET("/reporting/overview", a.GetOverview)
	router.GET("/reporting/exceptions", a.GetExceptions)
	router.GET("/reporting/journal", a.GetJournal)
	router.GET("/reports/board-pack", a.DownloadBoardPack)

	router.POST("/records/invoices", a.RecordInvoices)
	router.POST("/records/bank-transactions", a.RecordBankTransactions)
	router.POST("/reset", a.ResetStore)

	return a.router
}

func NewAPI(r *reckon.Reckon) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	router := gin.Default()
	router.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		router.Use(middleware.SecretKeyAuthMiddleware())
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})
	router.GET("/healthz", func(c *gin.Context) {
		hasData, err := r.HasData(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "has_data": hasData})
	})

	return &Api{reckon: r, router: router}
}
