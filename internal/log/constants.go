package log

const (
	KeyAppName            = "app"
	KeyEnv                = "env"
	KeyRequestID          = "requestId"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyProcess            = "process"
	KeyToken              = "token"
	KeyEmail              = "email"
	KeyUsername           = "username"
	KeyTag                = "tag"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyConfig             = "config"
	KeyDbURL              = "dbURL"
	KeyPathValues         = "pathValues"
	KeyQueryValues        = "queryValues"
	KeyCacheKey           = "cacheKey"
	KeyUserID             = "userId"
	KeySellerID           = "sellerId"
	KeyItemID             = "itemId"
	KeyItemType           = "itemType"
	KeyItem               = "item"
	KeyItems              = "items"
	KeyReviewer           = "reviewer"
	KeyCart               = "cart"
	KeyCartItem           = "cartItem"
	KeyCartItems          = "cartItems"
	KeyCartItemsCount     = "cartItemsCount"
	KeyWishlistItemID     = "wishlistItemId"
	KeyWishlistItemsCount = "wishlistItemsCount"
	KeyOrder              = "order"
	KeyOrderID            = "orderId"
	KeyOrders             = "orders"
	KeyOrdersCount        = "ordersCount"
	KeyTimeFrame          = "timeFrame"
	KeyCutoff             = "cutoff"
	KeyMetric             = "metric"
	KeyLimit              = "limit"
	KeyGroupBy            = "groupBy"
	KeyAnalytics          = "analytics"
	KeyRemainingQuantity  = "remainingQuantity"
	KeyMigrationDirection = "migrationDirection"
)
