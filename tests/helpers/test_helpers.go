package helpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB connects to the test database and makes sure the schema
// exists. Tests are skipped when no database is configured so the pure
// unit suites still run everywhere.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	applySchema(t, pool)

	return pool
}

func applySchema(t *testing.T, pool *pgxpool.Pool) {
	schema, err := os.ReadFile(filepath.Join("..", "..", "db", "schema.sql"))
	if err != nil {
		// integration tests live two levels down; service-level tests one
		schema, err = os.ReadFile(filepath.Join("..", "db", "schema.sql"))
	}
	if err != nil {
		t.Fatalf("Failed to read schema.sql: %v", err)
	}

	if _, err := pool.Exec(context.Background(), string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
}

// CleanupTestDB removes rows created by the test helpers and closes the
// pool. Habit and community rows cascade off their users.
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM users WHERE clerk_id LIKE 'user_test_%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	_, err = pool.Exec(ctx, "DELETE FROM habit_categories WHERE name LIKE 'test-%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test categories: %v", err)
	}
	pool.Close()
}

// CreateTestUser inserts a user row directly, bypassing the webhook path.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, clerkID string) uuid.UUID {
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, clerk_id, email, username)
		VALUES ($1, $2, $3, $4)`,
		id, clerkID, clerkID+"@example.com", clerkID)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

// CreateTestCategory seeds one habit category for habit tests.
func CreateTestCategory(t *testing.T, pool *pgxpool.Pool, name string) uuid.UUID {
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO habit_categories (id, name, kind, description, methods)
		VALUES ($1, $2, 'build', 'test category', 'test methods')`,
		id, "test-"+name)
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return id
}

// GenerateMockClerkJWT generates a mock JWT token for testing
func GenerateMockClerkJWT(clerkID string) (string, error) {
	secretKey := []byte("test-secret-key-for-testing-only")

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * 24).Unix(),
		"azp": "test-app-id",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// MockClerkWebhookPayload creates a mock webhook payload
func MockClerkWebhookPayload(eventType string, clerkID string) []byte {
	payload := ""

	switch eventType {
	case "user.created":
		payload = fmt.Sprintf(`{
			"type": "user.created",
			"object": "event",
			"data": {
				"id": "%s",
				"first_name": "Test",
				"last_name": "User",
				"email_addresses": [{
					"id": "email_123",
					"email_address": "test.user@example.com",
					"verification": {"status": "verified"}
				}],
				"primary_email_address_id": "email_123",
				"username": "testuser",
				"image_url": "https://example.com/image.jpg",
				"profile_image_url": "https://example.com/image.jpg"
			}
		}`, clerkID)

	case "user.deleted":
		payload = fmt.Sprintf(`{
			"type": "user.deleted",
			"object": "event",
			"data": {"id": "%s", "deleted": true}
		}`, clerkID)
	}

	return []byte(payload)
}
