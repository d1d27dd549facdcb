package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/honari/reading-backend/internal/dto"
)

type Config struct {
	ProjectID            string
	LogLevel             string
	Port                 string
	IdentityAPIKey       string
	IdentityAPIKeySecret string
	CatalogErrorPolicy   dto.CatalogErrorPolicy
	AuthRateLimit        float64
	AuthRateBurst        int
	CORSOrigins          []string
	TrustedProxyHops     int
	AuthEmulatorHost     string
}

func New() *Config {
	return &Config{
		ProjectID:            os.Getenv("PROJECTID"),
		LogLevel:             os.Getenv("LOGLEVEL"),
		Port:                 getString(os.Getenv("PORT"), "8080"),
		IdentityAPIKey:       os.Getenv("IDENTITYAPIKEY"),
		IdentityAPIKeySecret: os.Getenv("IDENTITYAPIKEYSECRET"),
		CatalogErrorPolicy:   getCatalogErrorPolicy(os.Getenv("CATALOGERRORPOLICY")),
		AuthRateLimit:        getFloat(os.Getenv("AUTHRATELIMIT"), 1),
		AuthRateBurst:        getInt(os.Getenv("AUTHRATEBURST"), 5),
		CORSOrigins:          getList(os.Getenv("CORSORIGINS"), []string{"*"}),
		TrustedProxyHops:     getInt(os.Getenv("TRUSTEDPROXYHOPS"), 0),
		AuthEmulatorHost:     os.Getenv("FIREBASE_AUTH_EMULATOR_HOST"),
	}
}

func getCatalogErrorPolicy(policy string) dto.CatalogErrorPolicy {
	switch strings.ToLower(policy) {
	case "propagate":
		return dto.CatalogPropagate
	default: // "degrade"
		return dto.CatalogDegrade
	}
}

func getString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func getFloat(v string, fallback float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func getInt(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getList(v string, fallback []string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
