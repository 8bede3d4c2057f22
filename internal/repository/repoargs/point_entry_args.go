package repoargs

import "time"

type PointEntryCreate struct {
	UserID    int64
	OrderID   *int64
	Amount    int64
	Reason    string
	ExpiresAt time.Time
}
