package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// one vip point per PointsPerWager chips wagered
	PointsPerWager = 10
	// percent of the new tier's min points announced on upgrade
	UpgradeBonusPercent = 10

	MaxTierName = "Max Tier"
	Unbounded   = int64(-1)
)

type TierBenefits struct {
	CashbackRate         float64  `json:"cashbackRate"`
	MonthlyBonus         int64    `json:"monthlyBonus"`
	DailyBonusMultiplier float64  `json:"dailyBonusMultiplier"`
	TournamentAccess     []string `json:"tournamentAccess"`
	WithdrawalLimit      int64    `json:"withdrawalLimit"`
	SupportPriority      string   `json:"supportPriority"`
	PersonalManager      bool     `json:"personalManager"`
	ExclusiveGames       bool     `json:"exclusiveGames"`
}

type Tier struct {
	Name        string       `json:"name"`
	MinPoints   int64        `json:"minPoints"`
	MaxPoints   int64        `json:"maxPoints"` // -1 for the top tier
	Color       string       `json:"color"`
	Icon        string       `json:"icon"`
	Benefits    TierBenefits `json:"benefits"`
	Description string       `json:"description"`
}

func (t Tier) Contains(points int64) bool {
	if points < t.MinPoints {
		return false
	}
	return t.MaxPoints == Unbounded || points <= t.MaxPoints
}

type TierTable struct {
	Tiers []Tier `json:"tiers"`
}

var (
	ErrTierTableEmpty   = errors.New("tier table empty")
	ErrTierTableInvalid = errors.New("tier table invalid")
)

var DefaultTiers = []Tier{
	{
		Name: "Bronze", MinPoints: 0, MaxPoints: 999,
		Color: "#CD7F32", Icon: "bronze",
		Benefits: TierBenefits{
			CashbackRate:         0.005,
			DailyBonusMultiplier: 1,
			TournamentAccess:     []string{"daily"},
			WithdrawalLimit:      5000,
			SupportPriority:      "standard",
		},
		Description: "Starting tier for every player",
	},
	{
		Name: "Silver", MinPoints: 1000, MaxPoints: 4999,
		Color: "#C0C0C0", Icon: "silver",
		Benefits: TierBenefits{
			CashbackRate:         0.01,
			DailyBonusMultiplier: 1.2,
			TournamentAccess:     []string{"daily", "weekly"},
			WithdrawalLimit:      10000,
			SupportPriority:      "standard",
		},
		Description: "Regular players with weekly tournaments",
	},
	{
		Name: "Gold", MinPoints: 5000, MaxPoints: 14999,
		Color: "#FFD700", Icon: "gold",
		Benefits: TierBenefits{
			CashbackRate:         0.02,
			MonthlyBonus:         500,
			DailyBonusMultiplier: 1.5,
			TournamentAccess:     []string{"daily", "weekly", "monthly"},
			WithdrawalLimit:      25000,
			SupportPriority:      "priority",
		},
		Description: "Monthly bonus and priority support",
	},
	{
		Name: "Platinum", MinPoints: 15000, MaxPoints: 49999,
		Color: "#E5E4E2", Icon: "platinum",
		Benefits: TierBenefits{
			CashbackRate:         0.03,
			MonthlyBonus:         2000,
			DailyBonusMultiplier: 2,
			TournamentAccess:     []string{"daily", "weekly", "monthly", "vip"},
			WithdrawalLimit:      100000,
			SupportPriority:      "priority",
			ExclusiveGames:       true,
		},
		Description: "Exclusive games and VIP tournaments",
	},
	{
		Name: "Diamond", MinPoints: 50000, MaxPoints: Unbounded,
		Color: "#B9F2FF", Icon: "diamond",
		Benefits: TierBenefits{
			CashbackRate:         0.05,
			MonthlyBonus:         10000,
			DailyBonusMultiplier: 3,
			TournamentAccess:     []string{"daily", "weekly", "monthly", "vip", "invitational"},
			WithdrawalLimit:      500000,
			SupportPriority:      "dedicated",
			PersonalManager:      true,
			ExclusiveGames:       true,
		},
		Description: "Personal account manager and the best rates",
	},
}

// active table, ascending by MinPoints
var tiers = DefaultTiers

// tier indexes sorted by min points desc, scanned by ResolveTier
var tiersDesc []int

func init() {
	buildTierIndex()
}

func buildTierIndex() {
	tiersDesc = make([]int, 0, len(tiers))
	for i := range tiers {
		tiersDesc = append(tiersDesc, i)
	}
	// sort by desc
	sort.SliceStable(tiersDesc, func(i, j int) bool {
		x := tiers[tiersDesc[i]]
		y := tiers[tiersDesc[j]]
		return x.MinPoints > y.MinPoints
	})
}

// ValidateTiers checks the table partitions [0, inf) without gaps or overlap.
func ValidateTiers(table []Tier) error {
	if len(table) == 0 {
		return ErrTierTableEmpty
	}
	if table[0].MinPoints != 0 {
		return fmt.Errorf("%w: first tier %s must start at 0", ErrTierTableInvalid, table[0].Name)
	}
	names := make(map[string]bool, len(table))
	for i, t := range table {
		if t.Name == "" || names[t.Name] {
			return fmt.Errorf("%w: tier %d has empty or duplicate name %q", ErrTierTableInvalid, i, t.Name)
		}
		names[t.Name] = true
		if t.Benefits.CashbackRate < 0 || t.Benefits.CashbackRate > 1 || t.Benefits.MonthlyBonus < 0 {
			return fmt.Errorf("%w: tier %s has invalid benefits", ErrTierTableInvalid, t.Name)
		}
		last := i == len(table)-1
		if last {
			if t.MaxPoints != Unbounded {
				return fmt.Errorf("%w: top tier %s must be unbounded", ErrTierTableInvalid, t.Name)
			}
			continue
		}
		if t.MaxPoints < t.MinPoints {
			return fmt.Errorf("%w: tier %s max below min", ErrTierTableInvalid, t.Name)
		}
		if t.MaxPoints+1 != table[i+1].MinPoints {
			return fmt.Errorf("%w: gap or overlap between %s and %s", ErrTierTableInvalid, t.Name, table[i+1].Name)
		}
	}
	return nil
}

// SetTiers replaces the active table. Not safe to call concurrently with
// resolution, only at module init.
func SetTiers(table []Tier) error {
	if err := ValidateTiers(table); err != nil {
		return err
	}
	tiers = append([]Tier(nil), table...)
	buildTierIndex()
	return nil
}

func Tiers() []Tier {
	return tiers
}

func TierIndex(name string) int {
	for i, t := range tiers {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// TierByName returns the lowest tier when the name is unknown.
func TierByName(name string) Tier {
	if idx := TierIndex(name); idx >= 0 {
		return tiers[idx]
	}
	return tiers[0]
}

func ResolveTier(points int64) Tier {
	return tiers[resolveTierIndex(points)]
}

func resolveTierIndex(points int64) int {
	for _, idx := range tiersDesc {
		if tiers[idx].MinPoints <= points {
			return idx
		}
	}
	return 0
}

func PointsFromWagered(wagered int64) int64 {
	if wagered <= 0 {
		return 0
	}
	return wagered / PointsPerWager
}

type TierProgress struct {
	Progress     float64 `json:"progress"`
	NextTier     string  `json:"nextTier"`
	PointsNeeded int64   `json:"pointsNeeded"`
}

func CalcProgress(points int64) TierProgress {
	i := resolveTierIndex(points)
	if i == len(tiers)-1 {
		return TierProgress{Progress: 100, NextTier: MaxTierName, PointsNeeded: 0}
	}
	cur, next := tiers[i], tiers[i+1]
	progress := 100 * float64(points-cur.MinPoints) / float64(next.MinPoints-cur.MinPoints)
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return TierProgress{
		Progress:     progress,
		NextTier:     next.Name,
		PointsNeeded: MaxIn64(next.MinPoints-points, 0),
	}
}

// Cashback is floor(loss * rate) in whole chips.
func Cashback(loss int64, rate float64) int64 {
	if loss <= 0 || rate <= 0 {
		return 0
	}
	return decimal.NewFromInt(loss).Mul(decimal.NewFromFloat(rate)).Floor().IntPart()
}

func UpgradeBonus(t Tier) int64 {
	return t.MinPoints * UpgradeBonusPercent / 100
}
