package service

import (
	"context"

	"remit-ledger/internal/core/domain"

	"github.com/rs/zerolog"
)

// LogNotifier implements ports.Notifier by emitting structured log events.
// It stands in for the push/websocket fanout service; delivery here is
// best-effort by contract, so a logger is a valid terminal.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) TransferCompleted(ctx context.Context, transfer *domain.Transfer) {
	n.log.Info().
		Str("event", "transfer.completed").
		Str("transfer_id", transfer.ID.String()).
		Str("recipient_id", transfer.RecipientID.String()).
		Msg("notify")
}

func (n *LogNotifier) DepositCredited(ctx context.Context, deposit *domain.Deposit) {
	event := n.log.Info().
		Str("event", "deposit.credited").
		Str("deposit_id", deposit.ID.String())
	if deposit.AccountID != nil {
		event = event.Str("account_id", deposit.AccountID.String())
	}
	event.Msg("notify")
}

func (n *LogNotifier) WithdrawalSettled(ctx context.Context, w *domain.Withdrawal) {
	event := n.log.Info().
		Str("event", "withdrawal.settled").
		Str("withdrawal_id", w.ID.String()).
		Str("status", string(w.Status))
	if w.TxHash != nil {
		event = event.Str("tx_hash", *w.TxHash)
	}
	event.Msg("notify")
}
