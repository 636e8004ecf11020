// Package sender реализует отправку исходящей почты: письма с одноразовым
// кодом входа и напоминания об истекающих членствах. Письма уходят через
// SMTP с обязательным STARTTLS.
package sender

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/magabrotheeeer/membership-gate/internal/config"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/models"
)

// SenderService отправляет письма пользователям.
type SenderService struct {
	cfg *config.Config
	log *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(cfg *config.Config, log *slog.Logger) *SenderService {
	return &SenderService{
		cfg: cfg,
		log: log,
	}
}

// SendLoginCode отправляет письмо с одноразовым кодом входа и ссылкой
// для входа в один клик.
func (s *SenderService) SendLoginCode(email, code, link string) error {
	subject := "Ваш код для входа"
	bodyText := fmt.Sprintf(
		"Здравствуйте!\n\nВаш одноразовый код для входа: %s\n\n"+
			"Или войдите по ссылке:\n%s\n\n"+
			"Код действует 15 минут. Если вы не запрашивали вход, просто проигнорируйте это письмо.",
		code, link)
	return s.sendMail(email, subject, bodyText)
}

// SendExpiryReminder обрабатывает сообщение очереди напоминаний и отправляет
// письмо о скором окончании членства. Сигнатура совместима с обработчиком
// потребителя RabbitMQ.
func (s *SenderService) SendExpiryReminder(body []byte) error {
	var message models.ReminderInfo
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	name := message.Name
	if name == "" {
		name = message.Email
	}

	subject := "Ваше членство скоро закончится"
	bodyText := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаше членство (план: %s) заканчивается %s.\n\n"+
			"Пожалуйста, продлите его заранее, чтобы не потерять доступ к материалам.",
		name, message.PlanType, message.EndDate.Format("02.01.2006"))

	return s.sendMail(message.Email, subject, bodyText)
}

func (s *SenderService) sendMail(to, subject, bodyText string) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.cfg.SMTPUser),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		s.log.Error("failed to dial SMTP server", sl.Err(err))
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		s.log.Error("failed to create SMTP client", sl.Err(err))
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	ok, _ := client.Extension("STARTTLS")
	if !ok {
		s.log.Error("SMTP server does not support STARTTLS")
		return fmt.Errorf("smtp server does not support STARTTLS")
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		s.log.Error("failed to start TLS", sl.Err(err))
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		s.log.Error("smtp auth failed", sl.Err(err))
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err = client.Mail(s.cfg.SMTPUser); err != nil {
		s.log.Error("failed to set mail sender", sl.Err(err))
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		s.log.Error("failed to set recipient", sl.Err(err))
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to open message body", sl.Err(err))
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message body", sl.Err(err))
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close message body", sl.Err(err))
		return fmt.Errorf("failed to close message body: %w", err)
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP session", sl.Err(err))
		return fmt.Errorf("failed to quit SMTP session: %w", err)
	}

	s.log.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}
