package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "seaview"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRoomCatalogURL = "http://localhost:8081"
	DefaultIdentityURL    = "http://localhost:8082"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPreAuthHold     = false
	DefaultHoldTTL         = 15 * time.Minute
	DefaultHoldSweepPeriod = 1 * time.Minute
	DefaultRoomLockTTL     = 10 * time.Second

	DefaultMaxGuestCount = 20

	DefaultPaginationLimit = 100
)
