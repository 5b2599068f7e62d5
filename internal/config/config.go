// Package config loads gradefill settings from defaults, an optional YAML
// file, a .env file and the environment.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads a .env file from the working directory or its parent, once.
// It returns the file that was loaded, or "" when none was found.
func LoadEnv() string {
	var loaded string
	envOnce.Do(func() {
		for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := godotenv.Load(candidate); err == nil {
				loaded = candidate
			}
			return
		}
	})
	return loaded
}
