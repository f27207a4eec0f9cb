package waha

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
)

// Notifier sends the WhatsApp confirmation for a stored transaction.
type Notifier struct {
	client *Client
	log    zerolog.Logger
}

// NewNotifier creates a notifier. client may be nil when the gateway is
// not configured; Notify then becomes a no-op.
func NewNotifier(client *Client, log zerolog.Logger) *Notifier {
	return &Notifier{
		client: client,
		log:    log,
	}
}

// Notify sends the confirmation message for tx to chatID.
func (n *Notifier) Notify(ctx context.Context, chatID string, tx *domain.Transaction) error {
	if n.client == nil {
		n.log.Debug().Msg("WAHA not configured, skipping confirmation")
		return nil
	}
	if err := n.client.SendText(ctx, chatID, ConfirmationMessage(tx)); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// ConfirmationMessage renders the confirmation template sent back to
// the chat a transaction came from.
func ConfirmationMessage(tx *domain.Transaction) string {
	label := "💸 Despesa"
	if tx.Type == domain.TypeIncome {
		label = "💰 Receita"
	}

	var b strings.Builder
	b.WriteString("✅ Transação registrada!\n\n")
	fmt.Fprintf(&b, "%s: R$ %s\n", label, tx.Amount.StringFixed(2))
	fmt.Fprintf(&b, "📂 Categoria: %s\n", tx.Category)
	fmt.Fprintf(&b, "📝 %s", tx.Description)
	return b.String()
}
