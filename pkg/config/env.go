package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRoomCatalogURL = "ROOM_CATALOG_URL"
	EnvIdentityURL    = "IDENTITY_URL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvPreAuthHold     = "PREAUTH_HOLD"
	EnvHoldTTL         = "HOLD_TTL"
	EnvHoldSweepPeriod = "HOLD_SWEEP_PERIOD"
	EnvRoomLockTTL     = "ROOM_LOCK_TTL"

	EnvMaxGuestCount = "MAX_GUEST_COUNT"
)
