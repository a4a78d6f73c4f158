package push

import (
	"Glimpse/internal/api/config"
	"context"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client 对接外部推送网关，用于移动端角标刷新
// 推送失败只记录日志，不影响主流程
type Client struct {
	http    *resty.Client
	enabled bool
}

type badgePayload struct {
	UserID      uint64 `json:"user_id"`
	UnreadCount int64  `json:"unread_count"`
}

func NewClient() *Client {
	pushCfg := config.Cfg.Push
	if pushCfg.GatewayURL == "" {
		return &Client{enabled: false}
	}

	timeout := time.Duration(pushCfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetBaseURL(pushCfg.GatewayURL).
		SetTimeout(timeout).
		SetHeader("X-Api-Key", pushCfg.ApiKey).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &Client{http: client, enabled: true}
}

// PushBadge 通知推送网关刷新某用户的未读角标
func (c *Client) PushBadge(ctx context.Context, userID uint64, unreadCount int64) {
	if !c.enabled {
		return
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&badgePayload{UserID: userID, UnreadCount: unreadCount}).
		Post("/v1/badge")

	if err != nil {
		log.WarnContext(ctx, "PUSH_BADGE_FAILED", "user_id", userID, "err", err)
		return
	}
	if resp.IsError() {
		log.WarnContext(ctx, "PUSH_BADGE_REJECTED", "user_id", userID, "status", resp.StatusCode())
	}
}
