package guard

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitForcesTestMode(t *testing.T) {
	assert.Equal(t, "1", os.Getenv("CREWBASE_TEST_MODE"))
}
