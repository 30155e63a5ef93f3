// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-school-session/internal/utils"
	"github.com/jrsteele09/go-school-session/profile"
	"github.com/redis/go-redis/v9"
)

var signingKey = []byte("test-signing-key")

// Credential signs a three-segment credential for subject expiring at exp.
func Credential(subject string, exp time.Time) string {
	claims := jwtlib.MapClaims{
		"sub": subject,
		"iat": exp.Add(-time.Hour).Unix(),
		"exp": exp.Unix(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("sign test credential: %v", err))
	}
	return signed
}

// ValidCredential expires an hour from now.
func ValidCredential(subject string) string {
	return Credential(subject, time.Now().Add(time.Hour))
}

// ExpiredCredential expired an hour ago.
func ExpiredCredential(subject string) string {
	return Credential(subject, time.Now().Add(-time.Hour))
}

func StudentProfile() profile.Profile {
	return profile.Profile{
		UserID:       "student-1",
		DisplayName:  "김학생",
		Role:         profile.RoleStudent,
		GradeLevel:   utils.Ptr(2),
		ClassSection: utils.Ptr(3),
		RollNumber:   utils.Ptr(12),
	}
}

func TeacherProfile() profile.Profile {
	return profile.Profile{
		UserID:       "teacher-1",
		DisplayName:  "박선생",
		Role:         profile.RoleTeacher,
		GradeLevel:   utils.Ptr(2),
		ClassSection: utils.Ptr(3),
	}
}

func ParentProfile() profile.Profile {
	return profile.Profile{
		UserID:      "parent-1",
		DisplayName: "이부모",
		Role:        profile.RoleParent,
	}
}

// SetupTestRedis connects to REDIS_ADDR and flushes the selected database.
// The test is skipped when REDIS_ADDR is not set or Redis is unreachable.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := client.Ping(t.Context()).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	if err := client.FlushDB(t.Context()).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return client
}

// PostgresDSN returns TEST_DATABASE_URL or skips the test.
func PostgresDSN(t *testing.T) string {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping Postgres test")
	}
	return dsn
}
