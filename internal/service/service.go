// Package service implements business logic, validation, and orchestration
// between handlers and the repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/tickethub/internal/cache"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validateEmail(email string) error {
	if email == "" {
		return model.Invalid("email is required")
	}
	if !isValidEmail(email) {
		return model.Invalid("email is not a valid email address")
	}
	return nil
}

var eventDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// normalizeEventDate accepts the date formats sent by the web client and
// renders them as a timestamp literal.
func normalizeEventDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", model.Invalid("eventDate is required")
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02 15:04:05"), nil
		}
	}
	return "", model.Invalid("eventDate must look like 2006-01-02T15:04")
}

// cached serves key from c, loading and storing it on a miss. Cache
// failures are logged and fall through to load.
func cached[T any](ctx context.Context, c cache.Cache, log logrus.FieldLogger, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	found, err := c.GetJSON(ctx, key, &v)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	if found {
		return v, nil
	}

	v, err = load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.SetJSON(ctx, key, v); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return v, nil
}
