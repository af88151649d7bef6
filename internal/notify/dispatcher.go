package notify

import (
	"context"
	"strings"

	"ADMINKA1.0/internal/metrics"
	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/storage"
	"ADMINKA1.0/internal/tools/logger"
)

// Pusher доставляет уже разрешённый токен наружу. Транспорт не наша
// забота, сюда подключается провайдер пушей.
type Pusher interface {
	Push(ctx context.Context, token, title, body string) error
}

// LogPusher пишет пуш в лог и ничего не шлёт, для локального запуска.
type LogPusher struct{}

func (LogPusher) Push(ctx context.Context, token, title, body string) error {
	logger.Logger.InfoContext(ctx, "push", "token", token, "title", title, "body", body)
	return nil
}

// Dispatcher - fire-and-forget канал уведомлений. Наружу ошибки не
// отдаёт никогда: действие админа не должно зависеть от доставки.
type Dispatcher struct {
	storage storage.Storage
	pusher  Pusher
}

func NewDispatcher(s storage.Storage, p Pusher) *Dispatcher {
	return &Dispatcher{storage: s, pusher: p}
}

// Notify находит push-токен пользователя и отправляет. Нет токена -
// молча выходим.
func (d *Dispatcher) Notify(ctx context.Context, userID, title, body string) {
	if userID == "" {
		metrics.NotificationsSkipped.Inc()
		return
	}

	user, err := d.storage.Get(ctx, "users", userID)
	if err != nil {
		metrics.NotificationsFailed.Inc()
		logger.Logger.WarnContext(ctx, "notify: user lookup failed", "user_id", userID, "err", err)
		return
	}

	token, _ := user["push_token"].(string)
	if token == "" {
		metrics.NotificationsSkipped.Inc()
		return
	}

	if err := d.pusher.Push(ctx, token, title, body); err != nil {
		metrics.NotificationsFailed.Inc()
		logger.Logger.WarnContext(ctx, "notify: push failed", "user_id", userID, "err", err)
		return
	}
	metrics.NotificationsSent.Inc()
}

// OwnerUserID проходит цепочку внешних ключей ресурса до user id
// владельца. Пустая строка - владельца нет или цепочка оборвалась.
func (d *Dispatcher) OwnerUserID(ctx context.Context, spec *models.ResourceSpec, row storage.Row) string {
	if spec.OwnerColumn == "" {
		return ""
	}

	current := row
	for _, hop := range spec.OwnerHops {
		next, ok := current[hop.FromColumn].(string)
		if !ok || next == "" {
			return ""
		}
		fetched, err := d.storage.Get(ctx, hop.Table, next)
		if err != nil {
			logger.Logger.WarnContext(ctx, "notify: owner hop failed",
				"table", hop.Table, "id", next, "err", err)
			return ""
		}
		current = fetched
	}

	owner, _ := current[spec.OwnerColumn].(string)
	return owner
}

// RenderTemplate подставляет старое и новое значение поля.
func RenderTemplate(t models.NotifyTemplate, oldValue, newValue string) (string, string) {
	replace := func(s string) string {
		s = strings.ReplaceAll(s, "{old}", oldValue)
		return strings.ReplaceAll(s, "{new}", newValue)
	}
	return replace(t.Title), replace(t.Body)
}
