package env

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from ENV_PATH, or defaultPath when ENV_PATH is
// unset. Variables already present in the process environment win. A
// missing file is an error only for the local environment (env "" or "local").
func LoadDotEnv(env string, defaultPath string) error {
	path := os.Getenv("ENV_PATH")
	if path == "" {
		slog.Debug("ENV_PATH is not set, using default path", "path", defaultPath)
		path = defaultPath
	}

	if err := godotenv.Load(path); err != nil {
		if env == "" || env == "local" {
			slog.Error("Failed to load .env file in local mode", "path", path, "error", err)
			return err
		}
		slog.Debug("Skipping .env file", "env", env, "path", path)
	}

	return nil
}
