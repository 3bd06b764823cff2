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
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minitug/reckon"
	"github.com/minitug/reckon/internal/apierror"
)

// GetOverview returns the aggregated reporting view. The entity query
// parameter defaults to the wildcard.
func (a Api) GetOverview(c *gin.Context) {
	entity := c.DefaultQuery("entity", reckon.EntityAll)

	overview, err := a.reckon.Overview(c.Request.Context(), entity)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetExceptions returns the unmatched record buckets.
func (a Api) GetExceptions(c *gin.Context) {
	exceptions, err := a.reckon.GetExceptions(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, exceptions)
}

// GetJournal returns the materialized double-entry journal.
func (a Api) GetJournal(c *gin.Context) {
	rows, err := a.reckon.Journal(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// DownloadBoardPack streams the board pack zip. 404 when the store is empty.
func (a Api) DownloadBoardPack(c *gin.Context) {
	blob, err := a.reckon.BoardPack(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", reckon.BoardPackName))
	c.Data(http.StatusOK, "application/zip", blob)
}
