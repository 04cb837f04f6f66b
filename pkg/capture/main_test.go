package capture

import (
	"os"
	"testing"

	"github.com/reverie-ai/reverie/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.SetupIDWorker(1)
	os.Exit(m.Run())
}
