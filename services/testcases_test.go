//go:build unit

// services/testcases_test.go
package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTestCases_FlatArray(t *testing.T) {
	raw := []byte(`[{"input":"1 2","output":"3"},{"stdin":"4 5","expected_output":"9"}]`)

	cases, err := NormalizeTestCases(raw)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, TestCase{Input: "1 2", Output: "3"}, cases[0])
	assert.Equal(t, TestCase{Input: "4 5", Output: "9"}, cases[1])
}

func TestNormalizeTestCases_WrappedArray(t *testing.T) {
	raw := []byte(`{"testCases":[{"input":"a","stdout":"b"}]}`)

	cases, err := NormalizeTestCases(raw)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, TestCase{Input: "a", Output: "b"}, cases[0])
}

func TestNormalizeTestCases_PublicHiddenOrdering(t *testing.T) {
	raw := []byte(`{
		"public":[{"input":"p1","output":"po1"},{"input":"p2","output":"po2"}],
		"hidden":[{"input":"h1","output":"ho1"}]
	}`)

	cases, err := NormalizeTestCases(raw)
	require.NoError(t, err)
	require.Len(t, cases, 3)
	assert.Equal(t, "p1", cases[0].Input)
	assert.Equal(t, "p2", cases[1].Input)
	assert.Equal(t, "h1", cases[2].Input)
}

func TestNormalizeTestCases_Idempotent(t *testing.T) {
	raw := []byte(`{"public":[{"stdin":"x","expected_output":"y"}],"hidden":[{"input":"h","output":"ho"}]}`)

	once, err := NormalizeTestCases(raw)
	require.NoError(t, err)

	reencoded, err := json.Marshal(once)
	require.NoError(t, err)

	twice, err := NormalizeTestCases(reencoded)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalizeTestCases_EmptyInputs(t *testing.T) {
	for _, raw := range []string{"", "[]", `{"testCases":[]}`, `{"public":[],"hidden":[]}`, "not json"} {
		_, err := NormalizeTestCases([]byte(raw))
		assert.ErrorIs(t, err, ErrNoTestCases, "raw=%q", raw)
	}
}

func TestSanitizeCode(t *testing.T) {
	assert.Equal(t, "print(1)\nprint(2)", SanitizeCode("  print(1)\r\nprint(2)\r\n  "))
	assert.Equal(t, "", SanitizeCode(" \r\n "))
}
