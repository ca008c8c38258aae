package infra

import (
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"

	"github.com/Team-Techentia/veedra-sub001/internal/config"

	"github.com/jordan-wright/email"
)

// ReceiptMail is one customer receipt message.
type ReceiptMail struct {
	To         string
	BillNumber string
	Subject    string
	Body       string
	PDFPath    string // optional
}

// Mailer sends receipt e-mails through the configured SMTP relay.
type Mailer struct {
	host string
	addr string
	from string
	auth smtp.Auth
}

func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		host: cfg.SMTPHost,
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from: fmt.Sprintf("%s <%s>", cfg.StoreName, cfg.SMTPUser),
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

// Configured reports whether an SMTP host was provided.
func (m *Mailer) Configured() bool { return m != nil && m.host != "" }

// SendReceipt mails msg. The PDF goes out as <bill number>.pdf whatever its name on disk.
func (m *Mailer) SendReceipt(msg ReceiptMail) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: SMTP host not configured")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)
	if msg.BillNumber != "" {
		e.Headers.Set("X-Bill-Number", msg.BillNumber)
	}

	if msg.PDFPath != "" {
		f, err := os.Open(msg.PDFPath)
		if err != nil {
			return fmt.Errorf("mailer: open receipt: %w", err)
		}
		defer f.Close()
		name := filepath.Base(msg.PDFPath)
		if msg.BillNumber != "" {
			name = msg.BillNumber + ".pdf"
		}
		if _, err := e.Attach(f, name, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach receipt: %w", err)
		}
	}
	return e.Send(m.addr, m.auth)
}
