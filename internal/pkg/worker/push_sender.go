package worker

import (
	"context"
	"fmt"
	"voucher_wheel/internal/pkg/push"
)

// PushSender 通过推送服务发送中奖通知
type PushSender struct {
	push push.PushService
}

func NewPushSender(p push.PushService) *PushSender {
	return &PushSender{push: p}
}

func (s *PushSender) Send(ctx context.Context, task NotificationTask) error {
	title := "Congratulations!"
	body := fmt.Sprintf("You won a %s voucher at %s. Code: %s", task.Value, task.ShopName, task.Code)
	return s.push.PushToAccount(ctx, task.UserID, title, body, map[string]string{
		"type": "voucher_won",
		"code": task.Code,
	})
}
