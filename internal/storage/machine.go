package storage

import "github.com/shopspring/decimal"

type Machine struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section"`
	Status  string `json:"status"`
}

type Settings struct {
	OverrunTolerancePercent decimal.Decimal `json:"overrun_tolerance_percent"`
	AllowLastRollOverrun    bool            `json:"allow_last_roll_overrun"`
	WasteTolerancePercent   decimal.Decimal `json:"waste_tolerance_percent"`
	QRPrefix                string          `json:"qr_prefix"`
}
