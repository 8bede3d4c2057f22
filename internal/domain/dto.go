package domain

type OrderStatusType string

const (
	OrderStatusNew       OrderStatusType = "NEW"
	OrderStatusCompleted OrderStatusType = "COMPLETED"
	OrderStatusCanceled  OrderStatusType = "CANCELED"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type CouponTemplateKey string

const (
	CouponTemplateWelcome      CouponTemplateKey = "WELCOME"
	CouponTemplateFirstOrder   CouponTemplateKey = "FIRST_ORDER"
	CouponTemplateReactivation CouponTemplateKey = "REACTIVATION"
	CouponTemplateBirthday     CouponTemplateKey = "BIRTHDAY"
	CouponTemplateLaunch       CouponTemplateKey = "LAUNCH"
)

type NotificationKind string

const (
	NotificationKindPointsAwarded  NotificationKind = "points_awarded"
	NotificationKindPointsCanceled NotificationKind = "points_canceled"
	NotificationKindCouponIssued   NotificationKind = "coupon_issued"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)
