package payment

import "testing"

func TestParseWallets(t *testing.T) {
	book := ParseWallets("BTC:bc1qtest, eth:0xabc ,BTC:bc1qdupe,:noaddr,LTC:")
	wallets := book.List()
	if len(wallets) != 2 {
		t.Fatalf("wallets = %d, want 2 (%+v)", len(wallets), wallets)
	}
	if wallets[0].Currency != "BTC" || wallets[0].Address != "bc1qtest" {
		t.Errorf("first wallet = %+v", wallets[0])
	}
	if wallets[1].Currency != "ETH" || wallets[1].Address != "0xabc" {
		t.Errorf("second wallet = %+v", wallets[1])
	}
}

func TestParseWalletsCapsAtFive(t *testing.T) {
	book := ParseWallets("A:1,B:2,C:3,D:4,E:5,F:6,G:7")
	if got := len(book.List()); got != maxWallets {
		t.Fatalf("wallets = %d, want %d", got, maxWallets)
	}
}

func TestParseWalletsEmpty(t *testing.T) {
	if got := len(ParseWallets("").List()); got != 0 {
		t.Fatalf("wallets = %d, want 0", got)
	}
}

func TestRandomProductNameIsGeneric(t *testing.T) {
	for i := 0; i < 50; i++ {
		if name := RandomProductName(); !IsGenericName(name) {
			t.Fatalf("name %q not in pool", name)
		}
	}
}
