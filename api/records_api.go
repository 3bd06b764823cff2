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

	model2 "github.com/minitug/reckon/api/model"
	"github.com/minitug/reckon/internal/apierror"
	"github.com/minitug/reckon/model"
)

// RecordInvoices ingests a batch of normalized invoices.
func (a Api) RecordInvoices(c *gin.Context) {
	var req struct {
		Invoices []model2.InvoiceRecord `json:"invoices"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoices := make([]*model.Invoice, 0, len(req.Invoices))
	for i := range req.Invoices {
		inv, err := req.Invoices[i].ToInvoice()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invoice %d: %v", i, err)})
			return
		}
		invoices = append(invoices, inv)
	}

	count, err := a.reckon.IngestInvoices(c.Request.Context(), invoices)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record_count": count})
}

// RecordBankTransactions ingests a batch of normalized bank movements.
func (a Api) RecordBankTransactions(c *gin.Context) {
	var req struct {
		Transactions []model2.BankTransactionRecord `json:"transactions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txns := make([]*model.BankTransaction, 0, len(req.Transactions))
	for i := range req.Transactions {
		txn, err := req.Transactions[i].ToBankTransaction()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("transaction %d: %v", i, err)})
			return
		}
		txns = append(txns, txn)
	}

	count, err := a.reckon.IngestBankTransactions(c.Request.Context(), txns)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record_count": count})
}

// ResetStore clears every record and match.
func (a Api) ResetStore(c *gin.Context) {
	if err := a.reckon.Reset(c.Request.Context()); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
