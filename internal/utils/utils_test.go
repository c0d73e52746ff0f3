package utils_test

import (
	"testing"

	"github.com/addrgate/addrgate/internal/utils"

	"gotest.tools/v3/assert"
)

func TestGenerateSecureToken(t *testing.T) {
	first, err := utils.GenerateSecureToken(32)
	assert.NilError(t, err)

	second, err := utils.GenerateSecureToken(32)
	assert.NilError(t, err)

	// 32 bytes base64url-encoded without padding
	assert.Equal(t, 43, len(first))
	assert.Assert(t, first != second)
}

func TestParseCommaString(t *testing.T) {
	assert.DeepEqual(t, utils.ParseCommaString(""), []string{})
	assert.DeepEqual(t, utils.ParseCommaString("city"), []string{"city"})
	assert.DeepEqual(t, utils.ParseCommaString("city, street ,country"), []string{"city", "street", "country"})
	assert.DeepEqual(t, utils.ParseCommaString("city,,street"), []string{"city", "street"})
}

func TestSplitScopes(t *testing.T) {
	assert.DeepEqual(t, utils.SplitScopes(""), []string{})
	assert.DeepEqual(t, utils.SplitScopes("street city"), []string{"street", "city"})
	assert.DeepEqual(t, utils.SplitScopes("  street   city  "), []string{"street", "city"})
	assert.Equal(t, "street city", utils.JoinScopes([]string{"street", "city"}))
}
