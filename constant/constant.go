package constant

const (
	UUID_USER_SYSTEM = "00000000-0000-0000-0000-000000000000"
)

const (
	RESET_SCHEDULER_LEADER_BOARD = "" // lifetime points never reset.
)

// Nakama storage.
const (
	VipCollection       = "vip"
	VipDataKey          = "vipData"
	VipTierTemplateKey  = "vip-tier-table"
	LeaderBoardVipPoint = "vip_lifetime_points"
)

// NATS subjects.
const (
	NatsSubjectWagerCompleted = "vip.wager.completed"
	NatsSubjectTierUpgraded   = "vip.tier.upgraded"
	NatsSubjectBonusClaimed   = "vip.bonus.claimed"
)

// Custom events.
const (
	NakEventVipWager = "vip_wager"
)

type NotificationCategory string

const NotificationCategory_Achievement NotificationCategory = "achievement"
const NotificationCategory_Bonus NotificationCategory = "bonus"
const NotificationCategory_Info NotificationCategory = "info"
const NotificationCategory_Warning NotificationCategory = "warning"
const NotificationCategory_Error NotificationCategory = "error"

func (c NotificationCategory) Valid() bool {
	switch c {
	case NotificationCategory_Achievement, NotificationCategory_Bonus,
		NotificationCategory_Info, NotificationCategory_Warning, NotificationCategory_Error:
		return true
	}
	return false
}

// Code is the Nakama realtime notification code for the category.
// Positive codes are reserved for application use.
func (c NotificationCategory) Code() int {
	switch c {
	case NotificationCategory_Achievement:
		return 201
	case NotificationCategory_Bonus:
		return 202
	case NotificationCategory_Warning:
		return 204
	case NotificationCategory_Error:
		return 205
	default:
		return 203
	}
}

type WalletAction string

func (w WalletAction) String() string {
	return string(w)
}

const (
	WalletActionVipCashback     WalletAction = "vip_cashback"
	WalletActionVipMonthlyBonus WalletAction = "vip_monthly_bonus"
)
