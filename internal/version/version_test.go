package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "sheetscan "+Version+" (commit: "+GitCommit+", built: "+BuildDate+")", String())
}
