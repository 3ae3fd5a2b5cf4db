/*
mailer.go - Outbound quote email

PURPOSE:
  Abstracts quote delivery behind a small interface so the handler does
  not care whether mail goes through a real provider or a log sink. The
  shipped implementation logs the rendered summary; production wires an
  SMTP or provider-backed implementation in main.
*/
package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aurora/quote-engine/store/sqlite"
)

// Mailer delivers a saved quote to a recipient.
type Mailer interface {
	SendQuote(ctx context.Context, recipient string, quote *sqlite.Quote) error
}

// LogMailer writes the quote summary to the log instead of sending mail.
// Used in development and tests.
type LogMailer struct {
	Sender string
	Logger *zap.Logger
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) SendQuote(ctx context.Context, recipient string, quote *sqlite.Quote) error {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("quote email",
		zap.String("from", m.Sender),
		zap.String("to", recipient),
		zap.String("reference", quote.ReferenceNumber),
		zap.String("subject", quoteEmailSubject(quote)),
		zap.Float64("annual_premium", quote.AnnualPremium.InexactFloat64()),
		zap.Float64("monthly_premium", quote.MonthlyPremium.InexactFloat64()))
	return nil
}

func quoteEmailSubject(q *sqlite.Quote) string {
	return fmt.Sprintf("Your auto insurance quote %s", q.ReferenceNumber)
}
