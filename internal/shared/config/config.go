package config

import (
	"fmt"
	"strconv"
	"time"

	"systems-api/internal/shared/utils"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	EDDN      EDDNConfig
	Reporting ReportingConfig
	Search    SearchConfig
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	TrustProxy        bool
}

// EDDNConfig controls the telemetry relay subscription.
type EDDNConfig struct {
	RelayURL       string
	ReceiveTimeout time.Duration
	ReconnectDelay time.Duration
}

// ReportingConfig controls the periodic ingestion summary.
type ReportingConfig struct {
	Interval      time.Duration
	RetryDelay    time.Duration
	Backend       string
	XMLRPCURL     string
	Timeout       time.Duration
	XMLRPCService string
	XMLRPCNick    string
	Channel       string
	RedisChannel  string
}

type SearchConfig struct {
	CacheEnabled   bool
	CacheTTL       time.Duration
	PermitCacheTTL time.Duration
}

const (
	ReportingBackendXMLRPC = "xmlrpc"
	ReportingBackendRedis  = "redis"
	ReportingBackendLog    = "log"
)

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config, err := load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

func load() (*Config, error) {
	config := &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Frontend:  loadFrontendConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
		EDDN:      loadEDDNConfig(),
		Reporting: loadReportingConfig(),
		Search:    loadSearchConfig(),
	}

	return config, nil
}

func loadRedisConfig() RedisConfig {
	enabled := utils.GetEnv("REDIS_ENABLED", "true") == "true"
	db, _ := strconv.Atoi(utils.GetEnv("REDIS_DB", "0"))

	return RedisConfig{
		Enabled:  enabled,
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func loadServerConfig() ServerConfig {
	readTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_READ_TIMEOUT_SECONDS", "15"))
	writeTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_WRITE_TIMEOUT_SECONDS", "60"))
	idleTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_IDLE_TIMEOUT_SECONDS", "60"))

	return ServerConfig{
		Port:         utils.GetEnv("SERVER_PORT", "6543"),
		Environment:  utils.GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	maxOpenConns, _ := strconv.Atoi(utils.GetEnv("DB_MAX_OPEN_CONNS", "25"))
	maxIdleConns, _ := strconv.Atoi(utils.GetEnv("DB_MAX_IDLE_CONNS", "5"))
	connMaxLifetime, _ := strconv.Atoi(utils.GetEnv("DB_CONN_MAX_LIFETIME_MINUTES", "5"))

	return DatabaseConfig{
		Host:            utils.GetEnv("DB_HOST", "localhost"),
		Port:            utils.GetEnv("DB_PORT", "5432"),
		User:            utils.GetEnv("DB_USER", "postgres"),
		Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
		Name:            utils.GetEnv("DB_NAME", "systems"),
		SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: time.Duration(connMaxLifetime) * time.Minute,
		MigrationsPath:  utils.GetEnv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

func loadFrontendConfig() FrontendConfig {
	corsDebug := utils.GetEnv("CORS_DEBUG", "") == "true"

	return FrontendConfig{
		URL:       utils.GetEnv("FRONTEND_URL", "*"),
		CORSDebug: corsDebug,
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")
	jsonFormat := environment == "production"

	return LoggingConfig{
		Level:      utils.GetEnv("LOG_LEVEL", "debug"),
		Format:     utils.GetEnv("LOG_FORMAT", "text"),
		JSONFormat: jsonFormat,
	}
}

func loadRateLimitConfig() RateLimitConfig {
	enabled := utils.GetEnv("RATE_LIMIT_ENABLED", "true") == "true"
	requestsPerSecond, _ := strconv.ParseFloat(utils.GetEnv("RATE_LIMIT_REQUESTS_PER_SECOND", "5"), 64)
	burstSize, _ := strconv.Atoi(utils.GetEnv("RATE_LIMIT_BURST_SIZE", "10"))

	return RateLimitConfig{
		Enabled:           enabled,
		RequestsPerSecond: requestsPerSecond,
		BurstSize:         burstSize,
		TrustProxy:        utils.GetEnv("RATE_LIMIT_TRUST_PROXY", "false") == "true",
	}
}

func loadEDDNConfig() EDDNConfig {
	receiveTimeout, _ := strconv.Atoi(utils.GetEnv("EDDN_RECEIVE_TIMEOUT_SECONDS", "600"))
	reconnectDelay, _ := strconv.Atoi(utils.GetEnv("EDDN_RECONNECT_DELAY_SECONDS", "5"))

	return EDDNConfig{
		RelayURL:       utils.GetEnv("EDDN_RELAY_URL", "tcp://eddn.edcd.io:9500"),
		ReceiveTimeout: time.Duration(receiveTimeout) * time.Second,
		ReconnectDelay: time.Duration(reconnectDelay) * time.Second,
	}
}

func loadReportingConfig() ReportingConfig {
	interval, _ := strconv.Atoi(utils.GetEnv("REPORT_INTERVAL_MINUTES", "60"))
	retryDelay, _ := strconv.Atoi(utils.GetEnv("REPORT_RETRY_DELAY_SECONDS", "60"))
	timeout, _ := strconv.Atoi(utils.GetEnv("REPORT_TIMEOUT_SECONDS", "10"))

	return ReportingConfig{
		Interval:      time.Duration(interval) * time.Minute,
		RetryDelay:    time.Duration(retryDelay) * time.Second,
		Backend:       utils.GetEnv("REPORT_BACKEND", ReportingBackendLog),
		XMLRPCURL:     utils.GetEnv("REPORT_XMLRPC_URL", ""),
		Timeout:       time.Duration(timeout) * time.Second,
		XMLRPCService: utils.GetEnv("REPORT_XMLRPC_SERVICE", "botserv"),
		XMLRPCNick:    utils.GetEnv("REPORT_XMLRPC_NICK", "Absolver"),
		Channel:       utils.GetEnv("REPORT_CHANNEL", "#announcerdev"),
		RedisChannel:  utils.GetEnv("REPORT_REDIS_CHANNEL", "systems-api:reports"),
	}
}

func loadSearchConfig() SearchConfig {
	cacheTTL, _ := strconv.Atoi(utils.GetEnv("SEARCH_CACHE_TTL_SECONDS", "300"))
	permitTTL, _ := strconv.Atoi(utils.GetEnv("SEARCH_PERMIT_CACHE_TTL_SECONDS", "600"))

	return SearchConfig{
		CacheEnabled:   utils.GetEnv("SEARCH_CACHE_ENABLED", "true") == "true",
		CacheTTL:       time.Duration(cacheTTL) * time.Second,
		PermitCacheTTL: time.Duration(permitTTL) * time.Second,
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.EDDN.RelayURL == "" {
		return fmt.Errorf("EDDN_RELAY_URL is required")
	}

	if c.EDDN.ReceiveTimeout <= 0 {
		return fmt.Errorf("EDDN_RECEIVE_TIMEOUT_SECONDS must be positive")
	}

	if c.Reporting.Interval <= 0 {
		return fmt.Errorf("REPORT_INTERVAL_MINUTES must be positive")
	}

	if c.Reporting.RetryDelay <= 0 {
		return fmt.Errorf("REPORT_RETRY_DELAY_SECONDS must be positive")
	}

	if c.Reporting.Timeout <= 0 {
		return fmt.Errorf("REPORT_TIMEOUT_SECONDS must be positive")
	}

	switch c.Reporting.Backend {
	case ReportingBackendXMLRPC:
		if c.Reporting.XMLRPCURL == "" {
			return fmt.Errorf("REPORT_XMLRPC_URL is required for the xmlrpc report backend")
		}
	case ReportingBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("REDIS_ENABLED must be true for the redis report backend")
		}
	case ReportingBackendLog:
	default:
		return fmt.Errorf("unknown REPORT_BACKEND %q", c.Reporting.Backend)
	}

	return nil
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
