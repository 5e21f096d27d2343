package entity

import "time"

// Wager is one completed bet reported by a game server.
type Wager struct {
	Id         int64     `gorm:"column:id;primaryKey" json:"id,omitempty"`
	UserId     string    `gorm:"column:user_id;index" json:"userId"`
	GameCode   string    `gorm:"column:game_code" json:"gameCode"`
	Amount     int64     `gorm:"column:amount" json:"amount"`
	Loss       int64     `gorm:"column:loss" json:"loss"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"createTime"`
}

func (Wager) TableName() string {
	return "vip_wager"
}

// BonusClaim is one credited monthly bonus.
type BonusClaim struct {
	Id             int64  `json:"id"`
	UserId         string `json:"userId"`
	MonthKey       string `json:"monthKey"`
	Tier           string `json:"tier"`
	Amount         int64  `json:"amount"`
	CreateTimeUnix int64  `json:"createTimeUnix"`
}

type CashbackResult struct {
	Tier     string  `json:"tier"`
	Rate     float64 `json:"rate"`
	Loss     int64   `json:"loss"`
	Cashback int64   `json:"cashback"`
}
