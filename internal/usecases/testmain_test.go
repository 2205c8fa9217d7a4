package usecases

import (
	"os"
	"testing"

	"plumise.backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("production")
	os.Exit(m.Run())
}
