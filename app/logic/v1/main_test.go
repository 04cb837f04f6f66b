package v1_test

import (
	"os"
	"testing"

	"github.com/reverie-ai/reverie/app/core"
	"github.com/reverie-ai/reverie/pkg/testutils"
)

// newTestCore boots a full Core against the environment described by .env.
// Integration tests are skipped when no database is configured.
func newTestCore(t *testing.T) *core.Core {
	t.Helper()
	testutils.LoadEnvOrPanic()

	if os.Getenv("REVERIE_POSTGRESQL_DSN") == "" {
		t.Skip("REVERIE_POSTGRESQL_DSN not set, skipping integration test")
	}

	return core.MustSetupCore(core.LoadBaseConfigFromENV())
}
