package testutil

import (
	"testing"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/stretchr/testify/require"
)

const (
	TestDatabase  = "devcamper_test"
	TestJWTSecret = "devcamper-test-secret"
)

// TestConfig returns validated settings suitable for tests. Uploads go to a
// temporary directory removed when the test finishes. The lowest bcrypt
// cost keeps password hashing fast.
func TestConfig(t *testing.T) *devcamper.Settings {
	settings := &devcamper.Settings{
		Database: devcamper.DBSettings{DB: TestDatabase},
		Auth: devcamper.AuthConfig{
			JWTSecret:  TestJWTSecret,
			JWTExpire:  "1h",
			BcryptCost: 4,
		},
		Upload: devcamper.UploadConfig{
			Path: t.TempDir(),
			URL:  "http://localhost/uploads",
		},
		Amboy: devcamper.AmboyConfig{
			PoolSizeLocal: 2,
			LocalStorage:  128,
		},
	}
	require.NoError(t, settings.Validate())
	return settings
}
