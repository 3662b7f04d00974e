package dotenv

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env from the working directory into the process environment.
// A missing file is fine; production deployments set real env vars instead.
func Load() error {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
