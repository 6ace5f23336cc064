package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BaSui01/logomotion/api"
	"github.com/BaSui01/logomotion/workflow"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

const (
	// 每条事件都携带完整快照，缓冲满时丢弃最旧的一条
	progressBuffer       = 16
	progressWriteTimeout = 10 * time.Second
)

// EventSnapshot 是连接建立后推送的首条事件类型
const EventSnapshot = "snapshot"

// HandleProgress 通过 WebSocket 推送状态事件。
// 首条消息是当前快照，之后每次状态变化推送一条；客户端按 revision 忽略旧消息。
// @Summary 进度流
// @Tags 向导
// @Success 101 {object} api.StudioEvent
// @Router /api/v1/progress [get]
func (h *StudioHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	// 长连接不受服务器 WriteTimeout 限制
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("progress stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	if h.streams != nil {
		h.streams.StreamOpened()
		defer h.streams.StreamClosed()
	}

	events := make(chan workflow.Event, progressBuffer)
	id := h.studio.Subscribe(func(ev workflow.Event) {
		select {
		case events <- ev:
			return
		default:
		}
		select {
		case <-events:
		default:
		}
		select {
		case events <- ev:
		default:
		}
	})
	defer h.studio.Unsubscribe(id)

	// 只写不读，CloseRead 处理客户端关闭帧
	ctx := conn.CloseRead(r.Context())

	first := api.StudioEvent{Type: EventSnapshot, State: api.NewStudioState(h.studio.Snapshot())}
	if err := h.writeEvent(ctx, conn, first); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.closing:
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case ev := <-events:
			if err := h.writeEvent(ctx, conn, api.NewStudioEvent(ev)); err != nil {
				return
			}
		}
	}
}

func (h *StudioHandler) writeEvent(ctx context.Context, conn *websocket.Conn, ev api.StudioEvent) error {
	ctx, cancel := context.WithTimeout(ctx, progressWriteTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, conn, ev); err != nil {
		h.logger.Debug("progress stream write failed", zap.Error(err))
		return err
	}
	return nil
}
