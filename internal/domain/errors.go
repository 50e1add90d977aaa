package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды на уровне transport)
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Инфраструктурные ошибки кэша/шины. Наружу не выходят:
// чтение деградирует к БД, инвалидация и publish логируются и пропускаются.
var (
	ErrCacheUnavailable = errors.New("cache_unavailable")
	ErrPublishFailed    = errors.New("publish_failed")
)

// Коды ошибок для API-конверта
const (
	ErrCodeBadParams        = 1000
	ErrCodeUnauth           = 1001
	ErrCodeNotFound         = 1004
	ErrCodeMethodNotAllowed = 1005
	ErrCodeUnexpected       = 1500
)
