package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("mobile user agent", func(t *testing.T) {
		md := Parse("Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, "mobile", md.Platform)
	})

	t.Run("empty user agent", func(t *testing.T) {
		md := Parse("")
		assert.Equal(t, Metadata{OS: "unknown", Browser: "unknown", Platform: "unknown"}, md)
	})
}
