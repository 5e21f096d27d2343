package api

import (
	"testing"
	"time"

	"github.com/nk-nigeria/vip-module/api/presenter"
	"github.com/stretchr/testify/assert"
)

func TestRewardActions(t *testing.T) {
	all, err := rewardActions("")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"vip_cashback", "vip_monthly_bonus"}, all)

	one, err := rewardActions("vip_cashback")
	assert.NoError(t, err)
	assert.Equal(t, []string{"vip_cashback"}, one)

	_, err = rewardActions("iap_topup")
	assert.Equal(t, presenter.ErrInvalidInput, err)
}

func TestMonthStart(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2026, time.November, 1, 3, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), monthStart(now))
}
