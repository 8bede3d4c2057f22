package outbox

import "errors"

// ErrNoNotifications сигнализирует, что очередь рассылки пуста.
var ErrNoNotifications = errors.New("no pending notifications")
