// Package relay は Hub のイベントを外部ブローカーへ流す。
package relay

import (
	"context"
	"log/slog"
	"strings"

	"foodcourt/internal/notify"
)

type Sink interface {
	Send(ctx context.Context, ev notify.Event) error
	Close() error
}

// Run は sub が閉じるか ctx が終わるまで sink に送り続ける。
// 送信失敗はログだけ残して次へ進む。
func Run(ctx context.Context, sub *notify.Subscription, sink Sink, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := sink.Send(ctx, ev); err != nil {
				logger.Error("relay send failed",
					"type", ev.Type,
					"topic", ev.Topic,
					"order_id", ev.OrderID,
					"error", err,
				)
			}
		}
	}
}

// routingKey は "tenant:3" を "tenant.3" にする（AMQP の topic 交換向け）
func routingKey(topic string) string {
	return strings.ReplaceAll(topic, ":", ".")
}
