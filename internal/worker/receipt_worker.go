package worker

// receipt_worker.go
// Renders the PDF receipt of a closed bill and, when the customer left an
// e-mail address, hands the file to QueueEmail.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Team-Techentia/veedra-sub001/internal/infra"
	"github.com/Team-Techentia/veedra-sub001/internal/model"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	BillID        string  `json:"bill_id"`
	CustomerEmail *string `json:"customer_email,omitempty"`
}

// RenderFunc writes a receipt and returns its path. infra.GenerateReceiptPDF in production.
type RenderFunc func(bill *model.Bill, storeName, storagePath string) (string, error)

type ReceiptWorker struct {
	bills       repository.BillRepository
	dispatcher  *Dispatcher
	render      RenderFunc
	storeName   string
	storagePath string
}

func NewReceiptWorker(bills repository.BillRepository, dispatcher *Dispatcher, storeName, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{
		bills:       bills,
		dispatcher:  dispatcher,
		render:      infra.GenerateReceiptPDF,
		storeName:   storeName,
		storagePath: storagePath,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload
//  2. Fetch the bill with lines and combos
//  3. Render the PDF unless the bill already has one
//  4. Store the path on the bill
//  5. Optionally enqueue the email job
//
// Malformed payloads are logged and dropped; storage errors are returned so
// the pool retries the job.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}
	billID, err := uuid.Parse(payload.BillID)
	if err != nil {
		log.Error().Str("bill_id", payload.BillID).Msg("receipt_worker: invalid bill_id")
		return nil
	}

	bill, err := w.bills.FindByID(ctx, billID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load bill %s: %w", payload.BillID, err)
	}

	path := ""
	if bill.ReceiptPath != nil {
		path = *bill.ReceiptPath
	} else {
		path, err = w.render(bill, w.storeName, w.storagePath)
		if err != nil {
			return fmt.Errorf("receipt_worker: render %s: %w", bill.BillNumber, err)
		}
		if err := w.bills.SetReceiptPath(ctx, bill.ID, path); err != nil {
			return fmt.Errorf("receipt_worker: store path for %s: %w", bill.BillNumber, err)
		}
		log.Info().Str("pdf", path).Str("bill_number", bill.BillNumber).Msg("receipt_worker: receipt generated")
	}

	if payload.CustomerEmail == nil || *payload.CustomerEmail == "" {
		return nil
	}
	emailJob := EmailJobPayload{
		ToEmail:    *payload.CustomerEmail,
		BillNumber: bill.BillNumber,
		Subject:    fmt.Sprintf("%s receipt %s", w.storeName, bill.BillNumber),
		Body:       receiptBody(bill),
		PDFPath:    path,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("bill_number", bill.BillNumber).Msg("receipt_worker: failed to enqueue email")
		return nil
	}
	log.Info().Str("bill_number", bill.BillNumber).Msg("receipt_worker: email job enqueued")
	return nil
}

func receiptBody(b *model.Bill) string {
	body := fmt.Sprintf("Thank you for your purchase.\nBill: %s\nTotal: %s\n", b.BillNumber, b.FinalAmount.StringFixed(2))
	if b.IsComboSale {
		body += fmt.Sprintf("Combo savings: %s\n", b.ComboSavings.StringFixed(2))
	}
	return body
}
