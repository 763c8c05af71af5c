package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/newsman/internal/monitor"
	"github.com/DjordjeVuckovic/newsman/pkg/config/env"
	"github.com/DjordjeVuckovic/newsman/pkg/utils"
)

type Config struct {
	Port            string
	UseHttp2        bool
	CorsOrigins     []string
	MonitorCapacity int
}

func LoadConfig() (*Config, error) {
	useHttp2Str := os.Getenv("USE_HTTP2")
	useHttp2 := useHttp2Str == "true"

	port := env.String("PORT", "")
	if port == "" {
		port = env.String("API_PORT", "8000")
	}

	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	origins := utils.SplitNonEmpty(os.Getenv("CORS_ORIGINS"), ",")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	capacity, err := env.Int("MONITOR_CAPACITY", monitor.DefaultCapacity)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:            port,
		UseHttp2:        useHttp2,
		CorsOrigins:     origins,
		MonitorCapacity: capacity,
	}, nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
