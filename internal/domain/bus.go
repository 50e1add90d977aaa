package domain

import "context"

// Канал и виды событий шины уведомлений
const (
	TasksChannel     = "tasks_channel"
	EventTaskCreated = "task_created"
)

// Событие шины. Payload содержит только идентификаторы и отображаемые
// поля — его получает любой подписчик.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type TaskCreatedData struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func NewTaskCreated(t Task) Event {
	return Event{
		Event: EventTaskCreated,
		Data:  TaskCreatedData{ID: t.ID.String(), Title: t.Title},
	}
}

// Шина уведомлений: at-most-once, fire-and-forget.
// Publish возвращает управление как только транспорт принял сообщение;
// подтверждений от подписчиков нет. Subscribe доставляет события
// обработчику в порядке получения до закрытия подписки.
type Bus interface {
	Publish(ctx context.Context, channel string, e Event) error
	Subscribe(ctx context.Context, channel string, handler func(Event)) error
	Close()
}
