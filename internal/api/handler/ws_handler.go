package handler

import (
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/pkg/response"
	"Glimpse/internal/pkg/security"
	"Glimpse/internal/service"
	"Glimpse/internal/session"
	"context"
	log "log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsEvent struct {
	Type     string          `json:"type"`
	Table    string          `json:"table,omitempty"`
	Action   string          `json:"action,omitempty"`
	EntityID uint64          `json:"entity_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type WsHandler struct {
	sessions *session.Manager
}

func NewWsHandler(sessions *session.Manager) *WsHandler {
	return &WsHandler{sessions: sessions}
}

// Connect 一条连接同时下发两类事件：信息流刷新提示和未读角标变化
func (s *WsHandler) Connect(c *gin.Context) {
	// 鉴权
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	userID := claims.UserID

	sess, ok := s.sessions.Get(claims.SessionID)
	if !ok {
		response.Error(c, service.ErrSessionNotFound)
		return
	}

	// 升级 Websocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	// 订阅会话内的刷新事件
	refreshCh, cancel := sess.Subscribe()
	defer cancel()

	// 订阅 Redis 角标频道
	badgeChannel := consts.UserBadgeChannelKey + strconv.FormatUint(userID, 10)
	pubsub := redis.Subscribe(context.Background(), badgeChannel)
	defer func() {
		_ = pubsub.Close()
	}()

	log.Info("用户 WS 连接已建立", "userID", userID, "sessionID", claims.SessionID)

	stopChan := make(chan struct{})

	// 读循环：监听客户端主动断开
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				close(stopChan)
				return
			}
		}
	}()

	// 写循环：会话事件与角标变化都推给客户端
	badgeCh := pubsub.Channel()
	for {
		select {
		case event, ok := <-refreshCh:
			if !ok {
				log.Info("会话已销毁，关闭 WS", "userID", userID)
				return
			}
			payload, _ := json.Marshal(&wsEvent{
				Type:     "feed_refresh",
				Table:    event.Table,
				Action:   event.Action,
				EntityID: event.EntityID,
			})
			if err := s.write(conn, payload); err != nil {
				log.Error("WS 推送失败", "userID", userID, "err", err)
				return
			}
		case msg := <-badgeCh:
			payload, _ := json.Marshal(&wsEvent{Type: "badge", Data: json.RawMessage(msg.Payload)})
			if err := s.write(conn, payload); err != nil {
				log.Error("WS 推送失败", "userID", userID, "err", err)
				return
			}
		case <-stopChan:
			log.Info("用户 WS 连接已断开", "userID", userID)
			return
		}
	}
}

func (s *WsHandler) write(conn *websocket.Conn, payload []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
