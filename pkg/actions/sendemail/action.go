// Package sendemail implements the send_email automation action. Delivery is
// not implemented; the action only logs what it would send.
package sendemail

import (
	"context"
	"log/slog"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/protocol"
)

const (
	RecipientContact = "contact"
	RecipientOwner   = "owner"
)

type Config struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Template string `json:"template"`
}

type Action struct {
	config Config
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	recipient := ""

	if deal := execCtx.Deal; deal != nil {
		switch {
		case a.config.To == RecipientOwner && deal.Owner != nil:
			recipient = deal.Owner.Email
		case a.config.To == RecipientContact && deal.Contact != nil:
			recipient = deal.Contact.Email
		}
	}

	logger.InfoContext(ctx, "email delivery not implemented",
		"to", a.config.To,
		"recipient", recipient,
		"subject", a.config.Subject,
		"template", a.config.Template,
	)

	return map[string]any{protocol.ResultStatus: protocol.StatusNotImplemented}, nil
}
