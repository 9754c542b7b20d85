// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/models"
)

const otpSubject = "Password Reset OTP"

// dialer is the part of *gomail.Dialer used by smtpMailer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpMailer struct {
	dialer dialer
	from   string

	logger *logger.Logger
}

type unavailableMailer struct {
	logger *logger.Logger
}

// NewMailer returns an SMTP-backed [Mailer] when cfg.Host is set. Without a
// host it returns a Mailer that always fails with [ErrDeliveryUnavailable],
// which makes the caller fall back to its operational log.
func NewMailer(cfg config.Mail, logger *logger.Logger) Mailer {
	if cfg.Host == "" {
		logger.Warn().Msg("mail host is not configured, one-time codes will not be delivered")
		return &unavailableMailer{logger: logger}
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	logger.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("smtp mailer created")
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
		logger: logger,
	}
}

func (m *smtpMailer) SendOTP(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	if err := m.dialer.DialAndSend(newOTPMessage(m.from, email, code)); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*smtpMailer.SendOTP").
			Str("email", email).
			Msg("error sending one-time code")
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	return nil
}

func (m *unavailableMailer) SendOTP(ctx context.Context, email, code string) error {
	return ErrDeliveryUnavailable
}

func newOTPMessage(from, to, code string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", otpSubject)
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your OTP for password reset is: %s\n\nThis OTP is valid for %d minutes.",
		code, int(models.OTPValidity.Minutes()),
	))
	return msg
}
