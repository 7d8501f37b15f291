package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// Loadenv copies a local .env file into the process environment. Values
// already set in the environment win.
func Loadenv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}
