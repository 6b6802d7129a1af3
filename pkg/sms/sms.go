package sms

import (
	"strings"

	"go.uber.org/zap"
)

// Sender delivers a text message to a phone number. Implementations must
// never block the calling fee operation; delivery is best effort.
type Sender interface {
	Send(phone, text string) bool
}

// LogSender is the gateway stub: it logs what would have been sent and
// reports success. Swap for a real gateway client in deployments.
type LogSender struct {
	senderID string
	logger   *zap.Logger
}

// NewLogSender builds the stub sender.
func NewLogSender(senderID string, logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{senderID: senderID, logger: logger}
}

// Send logs the outbound message. Empty phone numbers are skipped.
func (s *LogSender) Send(phone, text string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		s.logger.Warn("sms skipped: no phone number")
		return false
	}

	s.logger.Info("sms_dryrun",
		zap.String("sender_id", s.senderID),
		zap.String("phone", phone),
		zap.String("text", text),
	)
	return true
}

// Disabled is a Sender that drops every message.
type Disabled struct{}

// Send always reports failure without logging.
func (Disabled) Send(string, string) bool { return false }
