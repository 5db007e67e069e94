package config

import (
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnvs layers .env files into the process environment. godotenv never
// overrides a variable that is already set, so earlier files win.
func loadDotEnvs(rootPath string) {
	env := os.Getenv("VIDTUBE_ENV")
	if env == "" {
		env = "dev"
	}

	_ = godotenv.Load(rootPath + ".env." + env + ".local")
	if env != "test" {
		_ = godotenv.Load(rootPath + ".env.local")
	}
	_ = godotenv.Load(rootPath + ".env." + env)
	_ = godotenv.Load(rootPath + ".env")
}
