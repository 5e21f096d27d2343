package api

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/api/presenter"
	"github.com/nk-nigeria/vip-module/constant"
)

const defaultLeaderboardLimit = 20

func InitLeaderBoard(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule) {
	authoritative := true // No client can submit a score directly.
	sort := "desc"
	operator := "best"
	reset := constant.RESET_SCHEDULER_LEADER_BOARD
	metadata := map[string]interface{}{}
	if err := nk.LeaderboardCreate(ctx, constant.LeaderBoardVipPoint, authoritative, sort, operator, reset, metadata); err != nil {
		logger.Error("Can not create leaderboard %s, error %s", constant.LeaderBoardVipPoint, err.Error())
	}
}

// LeaderBoard ranks users by lifetime VIP points.
type LeaderBoard struct {
	nk     runtime.NakamaModule
	logger runtime.Logger
}

func NewLeaderBoard(nk runtime.NakamaModule, logger runtime.Logger) *LeaderBoard {
	return &LeaderBoard{nk: nk, logger: logger}
}

func (b *LeaderBoard) WriteLifetimePoints(ctx context.Context, userID string, points int64) error {
	username := ""
	accounts, err := b.nk.AccountsGetId(ctx, []string{userID})
	if err != nil || len(accounts) == 0 {
		b.logger.Warn("[WriteLifetimePoints] AccountsGetId %s %v", userID, err)
	} else {
		username = accounts[0].GetUser().GetUsername()
	}
	if _, err := b.nk.LeaderboardRecordWrite(ctx, constant.LeaderBoardVipPoint, userID, username, points, 0, map[string]interface{}{}, nil); err != nil {
		return err
	}
	return nil
}

type LeaderBoardRecord struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
	Rank     int64  `json:"rank"`
}

type LeaderBoardRequest struct {
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor"`
}

type LeaderBoardResponse struct {
	Records    []*LeaderBoardRecord `json:"records"`
	Owner      *LeaderBoardRecord   `json:"owner,omitempty"`
	NextCursor string               `json:"nextCursor"`
	PrevCursor string               `json:"prevCursor"`
}

func RpcLeaderboardVip() func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		req := &LeaderBoardRequest{}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), req); err != nil {
				logger.Error("Error when unmarshal payload %s", err.Error())
				return "", presenter.ErrUnmarshal
			}
		}
		if req.Limit <= 0 || req.Limit > 100 {
			req.Limit = defaultLeaderboardLimit
		}
		records, ownerRecords, next, prev, err := nk.LeaderboardRecordsList(ctx, constant.LeaderBoardVipPoint, []string{userID}, req.Limit, req.Cursor, 0)
		if err != nil {
			logger.WithField("err", err).Error("Error when list leaderboard records")
			return "", presenter.ErrInternalError
		}
		res := &LeaderBoardResponse{
			Records:    make([]*LeaderBoardRecord, 0, len(records)),
			NextCursor: next,
			PrevCursor: prev,
		}
		for _, r := range records {
			res.Records = append(res.Records, &LeaderBoardRecord{
				UserId:   r.GetOwnerId(),
				Username: r.GetUsername().GetValue(),
				Score:    r.GetScore(),
				Rank:     r.GetRank(),
			})
		}
		if len(ownerRecords) > 0 {
			r := ownerRecords[0]
			res.Owner = &LeaderBoardRecord{
				UserId:   r.GetOwnerId(),
				Username: r.GetUsername().GetValue(),
				Score:    r.GetScore(),
				Rank:     r.GetRank(),
			}
		}
		dataJson, err := json.Marshal(res)
		if err != nil {
			return "", presenter.ErrMarshal
		}
		return string(dataJson), nil
	}
}
