package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

// parses CLI flags for the terminal client, with defaults from the environment or a .env file
func ParseTUIFlags(args []string) Flags {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	endpoint := fs.String("endpoint", getEnv("TODOAI_API_ENDPOINT", "http://localhost:8080"), "base URL of the server")
	session := fs.String("session", "", "resume an existing to-do session")
	token := fs.String("token", os.Getenv("TODOAI_TOKEN"), "bearer token for authenticated sessions")
	fs.Parse(args) //nolint:errcheck,gosec // ExitOnError flag set handles errors

	return Flags{Endpoint: *endpoint, SessionID: *session, Token: *token}
}
