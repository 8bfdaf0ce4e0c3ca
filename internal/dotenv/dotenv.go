package dotenv

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env from the working directory (or the given paths) into the
// process environment. A missing file is not an error.
func Load(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
