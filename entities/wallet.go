package entities

import "github.com/shopspring/decimal"

// WalletInfo are the balances of a backend wallet, in BTC
type WalletInfo struct {
	Balance            decimal.Decimal `json:"balance"`
	UnconfirmedBalance decimal.Decimal `json:"unconfirmed_balance"`
	ImmatureBalance    decimal.Decimal `json:"immature_balance"`
}

// Total is the sum of all balances
func (w *WalletInfo) Total() decimal.Decimal {
	return w.Balance.Add(w.UnconfirmedBalance).Add(w.ImmatureBalance)
}
