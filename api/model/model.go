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
package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/minitug/reckon/model"
)

// Tolerance defaults applied when a reconcile request omits a field.
const (
	DefaultDateWindowDays  = 3
	DefaultAmountTolerance = 0.5
	DefaultPSPFeeAbs       = 50
	DefaultPSPFeePct       = 4
)

const dateLayout = "2006-01-02"

// ReconcileRequest carries one run's tolerances. Pointer fields distinguish
// "absent, use the default" from an explicit zero.
type ReconcileRequest struct {
	DateWindowDays  *int     `json:"date_window_days"`
	AmountTolerance *float64 `json:"amount_tolerance"`
	PSPFeeAbs       *float64 `json:"psp_fee_abs"`
	PSPFeePct       *float64 `json:"psp_fee_pct"`
	OnlyPSPNames    bool     `json:"only_psp_names"`
	Persist         bool     `json:"persist"`
}

func (r *ReconcileRequest) ValidateReconcileRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DateWindowDays, validation.Min(0)),
		validation.Field(&r.AmountTolerance, validation.Min(0.0)),
		validation.Field(&r.PSPFeeAbs, validation.Min(0.0)),
		validation.Field(&r.PSPFeePct, validation.Min(0.0), validation.Max(100.0)),
	)
}

// ToMatchConfig applies defaults for omitted fields.
func (r *ReconcileRequest) ToMatchConfig() model.MatchConfig {
	cfg := model.MatchConfig{
		DateWindowDays:  DefaultDateWindowDays,
		AmountTolerance: DefaultAmountTolerance,
		PSPFeeAbs:       DefaultPSPFeeAbs,
		PSPFeePct:       DefaultPSPFeePct,
		OnlyPSPNames:    r.OnlyPSPNames,
		Persist:         r.Persist,
	}
	if r.DateWindowDays != nil {
		cfg.DateWindowDays = *r.DateWindowDays
	}
	if r.AmountTolerance != nil {
		cfg.AmountTolerance = *r.AmountTolerance
	}
	if r.PSPFeeAbs != nil {
		cfg.PSPFeeAbs = *r.PSPFeeAbs
	}
	if r.PSPFeePct != nil {
		cfg.PSPFeePct = *r.PSPFeePct
	}
	return cfg
}

// InvoiceRecord is one normalized invoice as ingested.
type InvoiceRecord struct {
	InvoiceID string  `json:"invoice_id"`
	Entity    string  `json:"entity"`
	Partner   string  `json:"partner"`
	InvoiceNo string  `json:"invoice_no"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	NetAmount float64 `json:"net_amount"`
	VATAmount float64 `json:"vat_amount"`
	Currency  string  `json:"currency"`
	Date      string  `json:"date"`
}

func (i *InvoiceRecord) validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Entity, validation.Required),
		validation.Field(&i.Type, validation.Required, validation.In(model.InvoiceTypeRevenue, model.InvoiceTypeExpense)),
		validation.Field(&i.Amount, validation.Required),
		validation.Field(&i.Date, validation.Required, validation.By(checkDateFormat)),
	)
}

// ToInvoice converts the wire record after validation.
func (i *InvoiceRecord) ToInvoice() (*model.Invoice, error) {
	if err := i.validate(); err != nil {
		return nil, err
	}
	date, err := parseDate(i.Date)
	if err != nil {
		return nil, err
	}
	return &model.Invoice{
		InvoiceID: i.InvoiceID,
		Entity:    i.Entity,
		Partner:   i.Partner,
		InvoiceNo: i.InvoiceNo,
		Type:      i.Type,
		Amount:    i.Amount,
		NetAmount: i.NetAmount,
		VATAmount: i.VATAmount,
		Currency:  i.Currency,
		Date:      date,
	}, nil
}

// BankTransactionRecord is one normalized bank movement as ingested.
type BankTransactionRecord struct {
	TransactionID  string  `json:"transaction_id"`
	Entity         string  `json:"entity"`
	Partner        string  `json:"partner"`
	Memo           string  `json:"memo"`
	Direction      string  `json:"direction"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Date           string  `json:"date"`
	IsPSPCandidate bool    `json:"is_psp_candidate"`
}

func (b *BankTransactionRecord) validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Entity, validation.Required),
		validation.Field(&b.Direction, validation.Required, validation.In(model.DirectionIn, model.DirectionOut)),
		validation.Field(&b.Amount, validation.Required),
		validation.Field(&b.Date, validation.Required, validation.By(checkDateFormat)),
	)
}

// ToBankTransaction converts the wire record after validation.
func (b *BankTransactionRecord) ToBankTransaction() (*model.BankTransaction, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	date, err := parseDate(b.Date)
	if err != nil {
		return nil, err
	}
	return &model.BankTransaction{
		TransactionID:  b.TransactionID,
		Entity:         b.Entity,
		Partner:        b.Partner,
		Memo:           b.Memo,
		Direction:      b.Direction,
		Amount:         b.Amount,
		Currency:       b.Currency,
		Date:           date,
		IsPSPCandidate: b.IsPSPCandidate,
	}, nil
}

func checkDateFormat(value interface{}) error {
	s, _ := value.(string)
	if _, err := parseDate(s); err != nil {
		return errors.New("please format the date as 'YYYY-MM-DD' (e.g., 2024-01-10)")
	}
	return nil
}

// parseDate accepts plain dates and full RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
