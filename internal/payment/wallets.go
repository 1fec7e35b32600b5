package payment

import (
	"strings"

	"github.com/edjordao11/site/internal/models"
)

// maxWallets caps the manual-crypto wallet list: one wallet per
// currency code, five currencies at most.
const maxWallets = 5

// WalletBook holds the configured manual-crypto payment destinations.
type WalletBook struct {
	wallets []models.Wallet
}

// ParseWallets builds a wallet book from a comma-separated list of
// CODE:address pairs ("BTC:bc1...,ETH:0x..."). Malformed entries and
// duplicate currency codes are dropped; at most maxWallets are kept.
func ParseWallets(raw string) *WalletBook {
	book := &WalletBook{}
	seen := make(map[string]bool)

	for _, part := range strings.Split(raw, ",") {
		code, address, ok := strings.Cut(strings.TrimSpace(part), ":")
		code = strings.ToUpper(strings.TrimSpace(code))
		address = strings.TrimSpace(address)
		if !ok || code == "" || address == "" || seen[code] {
			continue
		}
		seen[code] = true
		book.wallets = append(book.wallets, models.Wallet{Currency: code, Address: address})
		if len(book.wallets) == maxWallets {
			break
		}
	}

	return book
}

// List returns the configured wallets in declaration order.
func (b *WalletBook) List() []models.Wallet {
	return b.wallets
}
