package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"nala-backend/config"
)

// EmailNotifier mails the buyer a receipt with their access code.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailNotifier(cfg config.SMTPConfig) (*EmailNotifier, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("smtp not configured")
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Port == 465
	return &EmailNotifier{dialer: d, from: cfg.From}, nil
}

func (e *EmailNotifier) Notify(_ context.Context, event AccessIssued) error {
	if event.Customer.Email == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(e.from, "Nala Art Studio"))
	m.SetHeader("To", event.Customer.Email)
	m.SetHeader("Subject", "Pembayaran Berhasil - Kode Akses Anda")
	m.SetBody("text/html", fmt.Sprintf(
		"<p>Halo %s,</p>"+
			"<p>Pembayaran untuk order <b>%s</b> sudah kami terima.</p>"+
			"<p>Kode akses Anda: <b>%s</b></p>"+
			"<p>Simpan kode ini baik-baik; kode berlaku tanpa batas waktu.</p>",
		event.Customer.FirstName, event.OrderID, event.Code))

	return e.dialer.DialAndSend(m)
}
