package entity

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrBonusAlreadyClaimed = errors.New("monthly bonus already claimed")
	ErrNoMonthlyBonus      = errors.New("tier has no monthly bonus")
)

// VipProgress is the per user record kept in Nakama storage.
type VipProgress struct {
	CurrentTier      string   `json:"currentTier"`
	CurrentPoints    int64    `json:"currentPoints"`
	PointsToNextTier int64    `json:"pointsToNextTier"`
	LifetimePoints   int64    `json:"lifetimePoints"`
	CashbackRate     float64  `json:"cashbackRate"`
	MonthlyBonus     int64    `json:"monthlyBonus"`
	ClaimedBonuses   []string `json:"claimedBonuses"`
	UpdateTimeUnix   int64    `json:"updateTimeUnix,omitempty"`
}

func NewVipProgress() *VipProgress {
	t := Tiers()[0]
	p := &VipProgress{
		CurrentTier:    t.Name,
		ClaimedBonuses: make([]string, 0),
	}
	p.applyTier(t)
	return p
}

// ParseVipProgress returns ok=false for a record that should be treated
// as missing.
func ParseVipProgress(payload string) (*VipProgress, bool) {
	if payload == "" {
		return nil, false
	}
	p := &VipProgress{}
	if err := json.Unmarshal([]byte(payload), p); err != nil {
		return nil, false
	}
	if TierIndex(p.CurrentTier) < 0 || p.CurrentPoints < 0 || p.LifetimePoints < 0 {
		return nil, false
	}
	if p.LifetimePoints < p.CurrentPoints {
		p.LifetimePoints = p.CurrentPoints
	}
	if p.ClaimedBonuses == nil {
		p.ClaimedBonuses = make([]string, 0)
	}
	return p, true
}

func (p *VipProgress) applyTier(t Tier) {
	p.CurrentTier = t.Name
	p.CashbackRate = t.Benefits.CashbackRate
	p.MonthlyBonus = t.Benefits.MonthlyBonus
	p.PointsToNextTier = CalcProgress(p.CurrentPoints).PointsNeeded
}

// Recompute derives points and tier from the wagered total. upgraded is
// set when the new tier ranks above the previously stored one.
func (p *VipProgress) Recompute(wagered int64) (upgraded bool, newTier Tier) {
	prev := TierByName(p.CurrentTier)
	p.CurrentPoints = PointsFromWagered(wagered)
	p.LifetimePoints = MaxIn64(p.LifetimePoints, p.CurrentPoints)
	newTier = ResolveTier(p.CurrentPoints)
	p.applyTier(newTier)
	return newTier.MinPoints > prev.MinPoints, newTier
}

func (p *VipProgress) Tier() Tier {
	return TierByName(p.CurrentTier)
}

func (p *VipProgress) HasClaimed(monthKey string) bool {
	for _, k := range p.ClaimedBonuses {
		if k == monthKey {
			return true
		}
	}
	return false
}

// BonusDue returns the bonus the user can claim for monthKey without
// changing the record.
func (p *VipProgress) BonusDue(monthKey string) (int64, error) {
	if p.HasClaimed(monthKey) {
		return 0, ErrBonusAlreadyClaimed
	}
	bonus := p.Tier().Benefits.MonthlyBonus
	if bonus <= 0 {
		return 0, ErrNoMonthlyBonus
	}
	return bonus, nil
}

// ClaimMonth marks monthKey as claimed and returns the bonus amount. The
// record is unchanged on error.
func (p *VipProgress) ClaimMonth(monthKey string) (int64, error) {
	bonus, err := p.BonusDue(monthKey)
	if err != nil {
		return 0, err
	}
	p.ClaimedBonuses = append(p.ClaimedBonuses, monthKey)
	p.MonthlyBonus = bonus
	return bonus, nil
}

// ClaimMonthlyBonus claims the month of now.
func (p *VipProgress) ClaimMonthlyBonus(now time.Time) (string, int64, error) {
	key := MonthKey(now)
	bonus, err := p.ClaimMonth(key)
	return key, bonus, err
}

// MonthKey is the ISO-8601 year-month of t in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

type VipInfo struct {
	Progress     *VipProgress `json:"vip"`
	Tier         Tier         `json:"tier"`
	TierProgress TierProgress `json:"tierProgress"`
	CanClaim     bool         `json:"canClaimMonthlyBonus"`
}

func NewVipInfo(p *VipProgress, now time.Time) *VipInfo {
	t := p.Tier()
	return &VipInfo{
		Progress:     p,
		Tier:         t,
		TierProgress: CalcProgress(p.CurrentPoints),
		CanClaim:     t.Benefits.MonthlyBonus > 0 && !p.HasClaimed(MonthKey(now)),
	}
}
