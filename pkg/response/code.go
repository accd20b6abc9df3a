package response

// 业务状态码
const (
	CodeSuccess = 0

	// 认证错误 100xx
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 券模块错误 200xx
	ErrVoucherNotFound      = 20001
	ErrVoucherNotRedeemable = 20002
	ErrVoucherCodeExists    = 20003

	// 游戏模块错误 300xx
	ErrGameNotEligible = 30001
	ErrGameTransient   = 30002
	ErrGameInvalidPool = 30003
	ErrGameNotLoggedIn = 30004

	// 商场/商铺/停车场错误 400xx
	ErrShopNotFound    = 40001
	ErrParkingInvalid  = 40002
	ErrParkingNotFound = 40003
	ErrMallNotFound    = 40004

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
