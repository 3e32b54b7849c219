package store

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/datastore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Runs against the Datastore emulator only:
// gcloud beta emulators datastore start && $(gcloud beta emulators datastore env-init)
func TestDatastoreStore(t *testing.T) {
	if os.Getenv("DATASTORE_EMULATOR_HOST") == "" {
		t.Skip("DATASTORE_EMULATOR_HOST is not set")
	}

	pjID := os.Getenv("DATASTORE_PROJECT_ID")
	if pjID == "" {
		pjID = "visitor-counter-test"
	}

	cl, err := datastore.NewClient(context.Background(), pjID)
	require.NoError(t, err)

	s := NewDatastoreStore(cl, "", "test-"+uuid.NewString())
	t.Cleanup(func() { s.Close() })
	testStore(t, s)
}
