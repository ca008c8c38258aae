package worker

import (
	"context"
	"encoding/json"

	"github.com/Team-Techentia/veedra-sub001/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail    string `json:"to_email"`
	BillNumber string `json:"bill_number"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	PDFPath    string `json:"pdf_path"`
}

// Mailer is satisfied by *infra.Mailer.
type Mailer interface {
	SendReceipt(msg infra.ReceiptMail) error
}

// EmailWorker consumes QueueEmail and mails the receipt PDF to the customer.
type EmailWorker struct {
	mailer Mailer
}

func NewEmailWorker(mailer Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one receipt. Undecodable or address-less jobs are dropped;
// SMTP failures are returned so the pool retries them.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Str("bill_number", payload.BillNumber).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := w.mailer.SendReceipt(infra.ReceiptMail{
		To:         payload.ToEmail,
		BillNumber: payload.BillNumber,
		Subject:    payload.Subject,
		Body:       payload.Body,
		PDFPath:    payload.PDFPath,
	})
	if err != nil {
		log.Error().Err(err).Str("bill_number", payload.BillNumber).Msg("email_worker: send failed")
		return err
	}
	log.Info().Str("bill_number", payload.BillNumber).Msg("email_worker: receipt sent")
	return nil
}
