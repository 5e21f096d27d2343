package entity

import "time"

type WalletLedgerListCursor struct {
	UserId     string
	CreateTime time.Time
	Id         string
	IsNext     bool
	Actions    []string
}

// WalletLedger is a row of Nakama's wallet_ledger table.
type WalletLedger struct {
	ID         string                 `json:"id"`
	UserId     string                 `json:"userId"`
	CreateTime int64                  `json:"createdTime"`
	UpdateTime int64                  `json:"updateTime"`
	Changeset  map[string]int64       `json:"changeset"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type RewardHistoryRequest struct {
	Action string `json:"action"`
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor"`
}

type RewardHistory struct {
	Items      []*WalletLedger `json:"items"`
	NextCursor string          `json:"nextCursor"`
	PrevCursor string          `json:"prevCursor"`
	// chips credited per vip action since the start of the current month
	MonthTotals map[string]int64 `json:"monthTotals"`
}
