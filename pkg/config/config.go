package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	MongoURI                string
	MongoDatabase           string
	MetricsPort             string
	SweepInterval           time.Duration

	// Delivery pricing knobs
	PricingBaseCost             float64
	PricingIncludedKm           float64
	PricingCostPerExtraKm       float64
	PricingCostPerExtraStop     float64
	PricingRainMultiplier       float64
	PricingHighDemandMultiplier float64
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "gringodelivery"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		SweepInterval:           getEnvDuration("NOTIFICATION_SWEEP_INTERVAL", 30*time.Second),

		PricingBaseCost:             getEnvFloat("PRICING_BASE_COST", 8.0),
		PricingIncludedKm:           getEnvFloat("PRICING_INCLUDED_KM", 3.0),
		PricingCostPerExtraKm:       getEnvFloat("PRICING_COST_PER_EXTRA_KM", 1.5),
		PricingCostPerExtraStop:     getEnvFloat("PRICING_COST_PER_EXTRA_STOP", 3.0),
		PricingRainMultiplier:       getEnvFloat("PRICING_RAIN_MULTIPLIER", 1.2),
		PricingHighDemandMultiplier: getEnvFloat("PRICING_HIGH_DEMAND_MULTIPLIER", 1.3),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
