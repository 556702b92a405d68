package constants

const (
	AppMarketplace   = "marketplace"
	AppInventory     = "inventory-service"
	AppCart          = "cart-service"
	AppOrder         = "order-service"
	AppSeller        = "seller-service"
	AppUser          = "user-service"
	AppNotification  = "notification-service"
	AppWishlist      = "wishlist-service"
	AudienceUser     = "audience-user"
	LogFilePath      = "/var/log/marketplace.log"
	ConfigFileName   = "marketplace"
	HeaderRequestID  = "X-Request-Id"
	HeaderAuthorized = "Authorization"
)
