package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"codeberg.org/todoai/server/internal/llm"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUpstream   = "upstream"
	CategoryUnknown    = "unknown"
)

// production-safe message per category
var sanitizedMessages = map[string]string{
	CategoryDatabase:   "state storage operation failed",
	CategoryNetwork:    "connection error occurred",
	CategoryValidation: "validation failed",
	CategoryAuth:       "permission denied",
	CategoryNotFound:   "resource not found",
	CategoryTimeout:    "request timed out",
	CategoryUpstream:   "the model provider returned an error",
	CategoryUnknown:    "an error occurred",
}

// substring rules for errors without a typed match, checked in order
var keywordRules = []struct {
	category string
	keywords []string
}{
	{CategoryTimeout, []string{"timeout", "deadline"}},
	{CategoryNotFound, []string{"not found", "no rows"}},
	{CategoryDatabase, []string{"database", "sql", "postgres", "redis"}},
	{CategoryNetwork, []string{"connection", "network", "dial"}},
	{CategoryValidation, []string{"validation", "binding", "invalid", "required"}},
	{CategoryAuth, []string{"unauthorized", "forbidden", "permission", "auth"}},
}

// analyzes an error and returns its category and sanitized message
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	category := categorize(err)

	sanitized := err.Error()
	if os.Getenv("ENVIRONMENT") == "production" {
		sanitized = sanitizedMessages[category]
	}

	return ErrorInfo{category: category, sanitized: sanitized}
}

func categorize(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return CategoryDatabase
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return CategoryUpstream
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, redis.Nil):
		return CategoryNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CategoryTimeout
	}

	msg := strings.ToLower(err.Error())

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return rule.category
			}
		}
	}

	return CategoryUnknown
}
