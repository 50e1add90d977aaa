package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/EgorLis/task-manager/internal/domain"
)

// Шина уведомлений поверх Redis Pub/Sub.
//
// Отдельные соединения для публикации и подписки: подписчик блокирует
// соединение на время жизни подписки. Оба создаются при старте процесса
// и закрываются вместе при остановке. Доставка at-most-once: сообщение,
// потерянное между получением и обработкой, не повторяется.

type Bus struct {
	pub    *redis.Client
	sub    *redis.Client
	logger *log.Logger

	mu   sync.Mutex
	subs []*redis.PubSub
}

type Config struct {
	Addr     string
	DB       int
	Password string
}

var _ domain.Bus = (*Bus)(nil)

func New(cfg Config, logger *log.Logger) *Bus {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	}
	return &Bus{
		pub:    redis.NewClient(opts),
		sub:    redis.NewClient(opts),
		logger: logger,
	}
}

func (b *Bus) Ping(ctx context.Context) error {
	if err := b.pub.Ping(ctx).Err(); err != nil {
		b.logger.Printf("PING failed: %v", err)
		return err
	}
	return nil
}

// Publish сериализует событие и отправляет: возврат — как только транспорт
// принял сообщение, подтверждений подписчиков не ждём.
func (b *Bus) Publish(ctx context.Context, channel string, e domain.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.pub.Publish(ctx, channel, payload).Err(); err != nil {
		b.logger.Printf("PUBLISH %s failed: %v", channel, err)
		return fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
	}
	b.logger.Printf("PUBLISH %s: event=%s", channel, e.Event)
	return nil
}

// Subscribe регистрирует обработчик на канал и запускает приёмный цикл.
// События доставляются в порядке получения; битый payload логируется
// и отбрасывается. Цикл живёт до Close (или закрытия подписки).
func (b *Bus) Subscribe(ctx context.Context, channel string, handler func(domain.Event)) error {
	ps := b.sub.Subscribe(ctx, channel)
	// дождаться подтверждения подписки
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		b.logger.Printf("SUBSCRIBE %s failed: %v", channel, err)
		return err
	}

	b.mu.Lock()
	b.subs = append(b.subs, ps)
	b.mu.Unlock()

	b.logger.Printf("SUBSCRIBE %s: ok", channel)

	go func() {
		for msg := range ps.Channel() {
			var e domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.logger.Printf("channel %s: drop malformed payload: %v", msg.Channel, err)
				continue
			}
			handler(e)
		}
		b.logger.Printf("channel %s: receive loop stopped", channel)
	}()
	return nil
}

// Close снимает подписки и закрывает оба соединения.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, ps := range subs {
		if err := ps.Close(); err != nil {
			b.logger.Printf("close subscription: %v", err)
		}
	}
	if err := b.sub.Close(); err != nil {
		b.logger.Printf("close subscriber conn: %v", err)
	}
	if err := b.pub.Close(); err != nil {
		b.logger.Printf("close publisher conn: %v", err)
	}
	b.logger.Println("closed")
}
