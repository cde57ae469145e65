package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/location"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/database"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "NAVIGATION"

// KafkaConfig holds broker settings. An empty broker list disables Kafka.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds route cache settings. An empty address disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ServiceConfig holds all configuration for the navigation service.
type ServiceConfig struct {
	Port              string
	AppEnv            string
	DBConfig          database.PostgresConfig
	KafkaConfig       KafkaConfig
	RedisConfig       RedisConfig
	CoreOptions       navigation.CoreOptions
	NavigationOptions navigation.NavigationOptions
	Location          location.Availability
}

// Load reads configuration from a .env file, if present, and the environment.
func Load() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service.port", "8090")
	v.SetDefault("app.env", "development")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "navigation")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	v.SetDefault("default.endpoint_url", navigation.DefaultEndpointURL)
	v.SetDefault("default.profile", navigation.DefaultProfile)
	v.SetDefault("default.location_mode", string(navigation.LocationModeDevice))
	v.SetDefault("default.style_url", navigation.DefaultNavigationOptions().StyleURL)
	v.SetDefault("default.snap_to_route", true)

	sim := location.DefaultSimulatedConfig()
	v.SetDefault("location.device_enabled", true)
	v.SetDefault("location.fused_enabled", true)
	v.SetDefault("location.simulated_enabled", true)
	v.SetDefault("location.fused_max_accuracy", 50.0)
	v.SetDefault("location.fused_stale_after", "10s")
	v.SetDefault("location.simulation_interval", sim.Interval.String())
	v.SetDefault("location.simulation_speed", sim.Speed)
	return v
}

// FromViper builds the configuration from an already populated viper instance.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	mode, err := navigation.ParseLocationMode(v.GetString("default.location_mode"))
	if err != nil {
		return nil, fmt.Errorf("default.location_mode: %w", err)
	}

	core := navigation.DefaultCoreOptions()
	core.EndpointURL = v.GetString("default.endpoint_url")
	core.Profile = v.GetString("default.profile")
	core.LocationMode = mode
	if err := core.Validate(); err != nil {
		return nil, fmt.Errorf("default core options: %w", err)
	}

	navOpts := navigation.NavigationOptions{
		StyleURL:                v.GetString("default.style_url"),
		SnapUserLocationToRoute: v.GetBool("default.snap_to_route"),
	}
	if err := navOpts.Validate(); err != nil {
		return nil, fmt.Errorf("default navigation options: %w", err)
	}

	sim := location.DefaultSimulatedConfig()
	sim.Interval = v.GetDuration("location.simulation_interval")
	sim.Speed = v.GetFloat64("location.simulation_speed")
	if sim.Interval <= 0 || sim.Speed <= 0 {
		return nil, errors.New("location simulation interval and speed must be positive")
	}

	port := v.GetString("service.port")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("app.env"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("kafka.brokers")),
			GroupPrefix: v.GetString("kafka.group_prefix"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		CoreOptions:       core,
		NavigationOptions: navOpts,
		Location: location.Availability{
			DeviceEnabled:    v.GetBool("location.device_enabled"),
			FusedEnabled:     v.GetBool("location.fused_enabled"),
			SimulatedEnabled: v.GetBool("location.simulated_enabled"),
			Fused: location.FusedConfig{
				MaxHorizontalAccuracy: v.GetFloat64("location.fused_max_accuracy"),
				StaleAfter:            v.GetDuration("location.fused_stale_after"),
			},
			Simulated: sim,
		},
	}, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
