package repoargs

type RepositoryName string

const (
	UserRepoName         RepositoryName = "user"
	OrderRepoName        RepositoryName = "order"
	PointEntryRepoName   RepositoryName = "point_entry"
	CouponRepoName       RepositoryName = "coupon"
	NotificationRepoName RepositoryName = "notification"
)
