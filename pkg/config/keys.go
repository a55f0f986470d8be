package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "WAYTRACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "WAYTRACK_APP_ENV"
	EnvPort   = "WAYTRACK_APP_PORT"

	EnvDBDSN  = "WAYTRACK_DB_DSN"
	EnvDBHost = "WAYTRACK_DB_HOST"
	EnvDBUser = "WAYTRACK_DB_USER"
	EnvDBName = "WAYTRACK_DB_NAME"

	EnvRedisURL = "WAYTRACK_REDIS_URL"

	EnvJWTSecret = "WAYTRACK_JWT_SECRET"
	EnvJWTIssuer = "WAYTRACK_JWT_ISSUER"

	EnvGCPProjectID = "WAYTRACK_GCP_PROJECT_ID"

	EnvPubSubJourneyTopic = "WAYTRACK_PUBSUB_JOURNEY_TOPIC"
	EnvPubSubRewardSub    = "WAYTRACK_PUBSUB_REWARD_SUBSCRIPTION"
	EnvPubSubRealtimeSub  = "WAYTRACK_PUBSUB_REALTIME_SUBSCRIPTION"

	EnvNotifyBaseURL = "WAYTRACK_NOTIFY_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
