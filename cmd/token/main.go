package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"codeberg.org/todoai/server/internal/auth"
)

// prints a bearer token for calling the API as a given user
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found")
	}

	userID := flag.String("user", "", "user id to embed in the token (random when empty)")
	email := flag.String("email", "dev@todoai.local", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		*userID = uuid.NewString()
	}

	token, err := auth.GenerateJWTWithTTL(*userID, *email, *ttl)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Printf("user: %s\n\n%s\n\n", *userID, token)
	fmt.Printf("export TODOAI_TOKEN=\"%s\"\n", token)
}
