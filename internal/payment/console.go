package payment

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// ConsoleSheet stands in for the mobile payment sheet on a terminal. The card entry itself
// happens on the payment provider's side; the console only asks the user to confirm.
type ConsoleSheet struct {
	In  io.Reader
	Out io.Writer
	// Yes skips the prompt.
	Yes bool

	cfg *SheetConfig
}

func (s *ConsoleSheet) Init(ctx context.Context, cfg SheetConfig) error {
	if !cfg.Params.Complete() {
		return ErrMissingParams
	}
	s.cfg = &cfg
	return nil
}

func (s *ConsoleSheet) Present(ctx context.Context) error {
	if s.cfg == nil {
		return ErrNotInitialized
	}
	fmt.Fprintf(s.Out, "%s: payment intent %s for customer %s\n", s.cfg.MerchantDisplayName, s.cfg.Params.PaymentIntent, s.cfg.Params.CustomerID)
	if s.Yes {
		return nil
	}
	fmt.Fprint(s.Out, "Confirmer le paiement ? [o/N] ")
	line, err := bufio.NewReader(s.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "o", "oui", "y", "yes":
		return nil
	default:
		return &SheetError{Code: "Canceled", Message: "The payment flow has been canceled"}
	}
}
