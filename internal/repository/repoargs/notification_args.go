package repoargs

import "github.com/fsdevblog/groph-shop/internal/domain"

type NotificationCreate struct {
	UserID   int64
	Kind     domain.NotificationKind
	Subject  string
	Body     string
	HTMLBody string
}
