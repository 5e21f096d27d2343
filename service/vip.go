package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/entity"
)

const maxWriteAttempts = 3

type VipService struct {
	store     ProgressStore
	stats     WagerStats
	notifier  Notifier
	publisher EventPublisher
	board     PointsBoard
	logger    runtime.Logger
	now       func() time.Time
}

type Option func(*VipService)

func WithPublisher(p EventPublisher) Option {
	return func(s *VipService) { s.publisher = p }
}

func WithPointsBoard(b PointsBoard) Option {
	return func(s *VipService) { s.board = b }
}

func WithClock(now func() time.Time) Option {
	return func(s *VipService) { s.now = now }
}

func NewVipService(store ProgressStore, stats WagerStats, notifier Notifier, logger runtime.Logger, opts ...Option) *VipService {
	s := &VipService{
		store:    store,
		stats:    stats,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = &entity.EmptyLogger{}
	}
	return s
}

type ClaimResult struct {
	MonthKey string              `json:"monthKey"`
	Amount   int64               `json:"amount"`
	Tier     string              `json:"tier"`
	Vip      *entity.VipProgress `json:"vip"`
}

// load returns a fresh record when none is stored or the stored one is
// unreadable. version "*" makes the first write create-only.
func (s *VipService) load(ctx context.Context, userID string) (p *entity.VipProgress, version string, fresh bool, err error) {
	value, version, err := s.store.ReadVip(ctx, userID)
	if err != nil {
		return nil, "", false, err
	}
	if value == "" {
		return entity.NewVipProgress(), "*", true, nil
	}
	p, ok := entity.ParseVipProgress(value)
	if !ok {
		s.logger.WithField("user_id", userID).Warn("Malformed vip record, reset to default tier")
		return entity.NewVipProgress(), version, true, nil
	}
	return p, version, false, nil
}

func (s *VipService) save(ctx context.Context, userID string, p *entity.VipProgress, version string) error {
	p.UpdateTimeUnix = s.now().Unix()
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.store.WriteVip(ctx, userID, string(data), version)
	return err
}

func (s *VipService) wageredTotal(ctx context.Context, userID string) (int64, error) {
	total, err := s.stats.WageredTotal(ctx, userID)
	if err != nil {
		return 0, err
	}
	if total < 0 {
		s.logger.Warn("Negative wagered total %d for user %s, clamp to 0", total, userID)
		total = 0
	}
	return total, nil
}

// Refresh recomputes the user's record from the wagered total and persists
// it. A tier upgrade emits an achievement and a bonus notification.
func (s *VipService) Refresh(ctx context.Context, userID string) (*entity.VipProgress, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		total, err := s.wageredTotal(ctx, userID)
		if err != nil {
			return nil, err
		}
		p, version, fresh, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		before := *p
		upgraded, tier := p.Recompute(total)
		if !fresh && !changed(&before, p) {
			return p, nil
		}
		if err := s.save(ctx, userID, p, version); err != nil {
			s.logger.Warn("Write vip record user %s attempt %d error %s", userID, attempt+1, err.Error())
			lastErr = err
			continue
		}
		if upgraded {
			s.announceUpgrade(ctx, userID, tier)
		}
		if s.board != nil && p.LifetimePoints > before.LifetimePoints {
			if err := s.board.WriteLifetimePoints(ctx, userID, p.LifetimePoints); err != nil {
				s.logger.Warn("Write lifetime points user %s error %s", userID, err.Error())
			}
		}
		return p, nil
	}
	return nil, lastErr
}

func changed(a, b *entity.VipProgress) bool {
	return a.CurrentTier != b.CurrentTier ||
		a.CurrentPoints != b.CurrentPoints ||
		a.LifetimePoints != b.LifetimePoints ||
		a.PointsToNextTier != b.PointsToNextTier ||
		a.CashbackRate != b.CashbackRate ||
		a.MonthlyBonus != b.MonthlyBonus
}

func (s *VipService) Info(ctx context.Context, userID string) (*entity.VipInfo, error) {
	p, err := s.Refresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entity.NewVipInfo(p, s.now()), nil
}

// MonthlyBonusDue reports this month's claimable bonus without changing the
// stored record.
func (s *VipService) MonthlyBonusDue(ctx context.Context, userID string) (*ClaimResult, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	p, _, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := entity.MonthKey(s.now())
	amount, err := p.BonusDue(key)
	if err != nil {
		return nil, err
	}
	return &ClaimResult{MonthKey: key, Amount: amount, Tier: p.CurrentTier, Vip: p}, nil
}

// ClaimMonthlyBonus records this month's claim. Rejections leave the stored
// record untouched and return entity.ErrBonusAlreadyClaimed or
// entity.ErrNoMonthlyBonus.
func (s *VipService) ClaimMonthlyBonus(ctx context.Context, userID string) (*ClaimResult, error) {
	return s.ClaimMonth(ctx, userID, entity.MonthKey(s.now()))
}

// ClaimMonth marks monthKey as claimed on the stored record and emits the
// bonus notification.
func (s *VipService) ClaimMonth(ctx context.Context, userID, monthKey string) (*ClaimResult, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		p, version, _, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		amount, err := p.ClaimMonth(monthKey)
		if err != nil {
			return nil, err
		}
		if err := s.save(ctx, userID, p, version); err != nil {
			s.logger.Warn("Write vip claim user %s attempt %d error %s", userID, attempt+1, err.Error())
			lastErr = err
			continue
		}
		s.notify(ctx, &entity.Notification{
			RecipientId: userID,
			Title:       "Monthly Bonus Claimed",
			Message:     fmt.Sprintf("You claimed your %s monthly bonus of %d coins.", p.CurrentTier, amount),
			Category:    constant.NotificationCategory_Bonus,
			DurationMs:  5000,
		})
		s.publish(constant.NatsSubjectBonusClaimed, "vip_bonus_claimed", map[string]string{
			"user_id":   userID,
			"month_key": monthKey,
			"tier":      p.CurrentTier,
			"amount":    strconv.FormatInt(amount, 10),
		})
		return &ClaimResult{MonthKey: monthKey, Amount: amount, Tier: p.CurrentTier, Vip: p}, nil
	}
	return nil, lastErr
}

// Cashback computes the rebate on a loss at the user's current tier and
// announces it. It never credits a balance.
func (s *VipService) Cashback(ctx context.Context, userID string, loss int64) (entity.CashbackResult, error) {
	res, err := s.CalcCashback(ctx, userID, loss)
	if err != nil {
		return res, err
	}
	s.NotifyCashback(ctx, userID, res)
	return res, nil
}

// CalcCashback computes the rebate at the stored tier without notifying.
func (s *VipService) CalcCashback(ctx context.Context, userID string, loss int64) (entity.CashbackResult, error) {
	if userID == "" {
		return entity.CashbackResult{}, ErrMissingUser
	}
	if loss < 0 {
		s.logger.Warn("Negative loss %d for user %s, clamp to 0", loss, userID)
		loss = 0
	}
	p, _, _, err := s.load(ctx, userID)
	if err != nil {
		return entity.CashbackResult{}, err
	}
	tier := p.Tier()
	return entity.CashbackResult{
		Tier:     tier.Name,
		Rate:     tier.Benefits.CashbackRate,
		Loss:     loss,
		Cashback: entity.Cashback(loss, tier.Benefits.CashbackRate),
	}, nil
}

// NotifyCashback emits the cashback notification when res is above zero.
func (s *VipService) NotifyCashback(ctx context.Context, userID string, res entity.CashbackResult) {
	if res.Cashback <= 0 {
		return
	}
	s.notify(ctx, &entity.Notification{
		RecipientId: userID,
		Title:       "Cashback Received",
		Message:     fmt.Sprintf("You received %d coins cashback at %s tier.", res.Cashback, res.Tier),
		Category:    constant.NotificationCategory_Bonus,
		DurationMs:  4000,
	})
}

func (s *VipService) announceUpgrade(ctx context.Context, userID string, tier entity.Tier) {
	bonus := entity.UpgradeBonus(tier)
	s.notify(ctx, &entity.Notification{
		RecipientId: userID,
		Title:       "VIP Tier Upgraded!",
		Message:     fmt.Sprintf("Congratulations! You've reached %s tier.", tier.Name),
		Category:    constant.NotificationCategory_Achievement,
		DurationMs:  5000,
		Action:      &entity.NotificationAction{Label: "View VIP", Route: "/vip"},
	})
	s.notify(ctx, &entity.Notification{
		RecipientId: userID,
		Title:       "Tier Upgrade Bonus",
		Message:     fmt.Sprintf("You earned a %d coins bonus for reaching %s.", bonus, tier.Name),
		Category:    constant.NotificationCategory_Bonus,
		DurationMs:  5000,
	})
	s.publish(constant.NatsSubjectTierUpgraded, "vip_tier_upgraded", map[string]string{
		"user_id": userID,
		"tier":    tier.Name,
		"bonus":   strconv.FormatInt(bonus, 10),
	})
}

func (s *VipService) notify(ctx context.Context, n *entity.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("Notify user %s title %s error %s", n.RecipientId, n.Title, err.Error())
	}
}

func (s *VipService) publish(subject, name string, properties map[string]string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishEvent(subject, name, properties)
}
