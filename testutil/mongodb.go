package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const (
	mongoImage = "mongo:7"

	// MongoURIOverride points tests at an existing server instead of a
	// container.
	MongoURIOverride = "DEVCAMPER_TEST_MONGODB_URI"
)

// StartMongoDB returns the URI of a MongoDB server for the test. Without an
// override it starts a container that is terminated when the test
// finishes. The test is skipped in short mode, when SKIP_INTEGRATION_TESTS is
// set, or when no container runtime is available.
func StartMongoDB(t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	if skip, _ := strconv.ParseBool(os.Getenv("SKIP_INTEGRATION_TESTS")); skip {
		t.Skip("SKIP_INTEGRATION_TESTS is set, skipping database test")
	}
	if uri := os.Getenv(MongoURIOverride); uri != "" {
		return uri
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := mongodb.Run(ctx, mongoImage)
	require.NoError(t, err, "starting mongodb container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminating mongodb container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}
