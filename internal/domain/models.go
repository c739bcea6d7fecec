package domain

import "time"

// DefaultWallet is the name the primary wallet is registered under.
const DefaultWallet = "default"

// Options carries the user-facing settings shared by the models.
type Options struct {
	Language       string `json:"language,omitempty"`
	StartMinimized bool   `json:"start_minimized"`
	HideTrayIcon   bool   `json:"hide_tray_icon"`
	ResetSettings  bool   `json:"-"`
}

// WalletInfo describes a wallet loaded by the engine.
type WalletInfo struct {
	Name string
	Path string
}

// ClientModel is bound to the window once the engine is up.
type ClientModel struct {
	Network   string
	RPCAddr   string
	StartedAt time.Time
	Options   *Options
}

// WalletModel exposes a loaded wallet to the window.
type WalletModel struct {
	Wallet  WalletInfo
	Options *Options

	// CoinsSent is notified after a payment to a PaymentRequest completed.
	CoinsSent func(PaymentRequest)
}

// PaymentRequest is a parsed payment URI or payment-request file.
type PaymentRequest struct {
	Address string
	Amount  string
	Label   string
	Message string
	Source  string
}
