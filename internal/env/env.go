package env

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type EnvironmentVariables struct {
	BackendPort string
	GrpcAddr    string
	RedisAddr   string
	LogLevel    string
	Environment string

	SupabaseURL        string
	SupabaseServiceKey string
	DatabaseURL        string

	BraintreeEnvironment string
	BraintreeMerchantID  string
	BraintreePublicKey   string
	BraintreePrivateKey  string

	AppMerchantAccount        string
	TechnicianMerchantAccount string
	ChatSenderID              string
}

type loader struct {
	v       *viper.Viper
	missing []string
}

// Load reads the process environment. Every required variable that is unset is
// reported in a single error.
func Load() (*EnvironmentVariables, error) {
	v := viper.New()
	v.AutomaticEnv()
	return load(v)
}

func load(v *viper.Viper) (*EnvironmentVariables, error) {
	l := &loader{v: v}

	env := &EnvironmentVariables{
		BackendPort: l.getOptionalEnv("BACKEND_PORT", "8080"),
		GrpcAddr:    l.getOptionalEnv("GRPC_ADDR", ""),
		RedisAddr:   l.getOptionalEnv("REDIS_ADDR", ""),
		LogLevel:    strings.ToLower(l.getOptionalEnv("LOG_LEVEL", "info")),
		Environment: l.getOptionalEnv("ENVIRONMENT", "development"),

		DatabaseURL: l.getOptionalEnv("DATABASE_URL", ""),

		BraintreeEnvironment: strings.ToLower(l.getOptionalEnv("BRAINTREE_ENVIRONMENT", "sandbox")),
		BraintreeMerchantID:  l.getRequiredEnv("BRAINTREE_MERCHANT_ID"),
		BraintreePublicKey:   l.getRequiredEnv("BRAINTREE_PUBLIC_KEY"),
		BraintreePrivateKey:  l.getRequiredEnv("BRAINTREE_PRIVATE_KEY"),

		AppMerchantAccount:        l.getOptionalEnv("APP_MERCHANT_ACCOUNT", "fix_go_app_account"),
		TechnicianMerchantAccount: l.getOptionalEnv("TECHNICIAN_MERCHANT_ACCOUNT", "technician_payouts"),
		ChatSenderID:              l.getOptionalEnv("CHAT_SENDER_ID", uuid.Nil.String()),
	}

	// The PostgREST credentials are only needed when no direct connection is configured.
	if env.DatabaseURL == "" {
		env.SupabaseURL = strings.TrimRight(l.getRequiredEnv("SUPABASE_URL"), "/")
		env.SupabaseServiceKey = l.getRequiredEnv("SUPABASE_SERVICE_ROLE_KEY")
	} else {
		env.SupabaseURL = strings.TrimRight(l.getOptionalEnv("SUPABASE_URL", ""), "/")
		env.SupabaseServiceKey = l.getOptionalEnv("SUPABASE_SERVICE_ROLE_KEY", "")
	}

	switch env.BraintreeEnvironment {
	case "sandbox", "production":
	default:
		return nil, fmt.Errorf("[env] unsupported BRAINTREE_ENVIRONMENT %q", env.BraintreeEnvironment)
	}

	if len(l.missing) > 0 {
		return nil, fmt.Errorf("[env] required environment variables not set: %s", strings.Join(l.missing, ", "))
	}
	return env, nil
}

func (l *loader) getRequiredEnv(key string) string {
	value := strings.TrimSpace(l.v.GetString(key))
	if value == "" {
		l.missing = append(l.missing, key)
	}
	return value
}

func (l *loader) getOptionalEnv(key, defaultValue string) string {
	value := strings.TrimSpace(l.v.GetString(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func (e *EnvironmentVariables) UsesDirectDatabase() bool {
	return e.DatabaseURL != ""
}

func (e *EnvironmentVariables) IsProduction() bool {
	return e.Environment == "production"
}

func (e *EnvironmentVariables) IsDevelopment() bool {
	return !e.IsProduction()
}
