// apiclient/token_test.go
package apiclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_States(t *testing.T) {
	assert.True(t, Keep().IsKeep())
	assert.False(t, Keep().IsClear())
	assert.True(t, Clear().IsClear())

	value, ok := Value("abc").Get()
	assert.True(t, ok)
	assert.Equal(t, "abc", value)

	_, ok = Clear().Get()
	assert.False(t, ok)
	_, ok = Keep().Get()
	assert.False(t, ok)

	assert.Equal(t, "<keep>", Keep().String())
	assert.Equal(t, "<clear>", Clear().String())
	assert.Equal(t, "<value>", Value("secret").String(), "the value is never printed")
}

func TestToken_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantAccess  Token
		wantRefresh Token
	}{
		{"both present", `{"access_token":"a","refresh_token":"r"}`, Value("a"), Value("r")},
		{"refresh absent", `{"access_token":"a"}`, Value("a"), Keep()},
		{"refresh null", `{"access_token":"a","refresh_token":null}`, Value("a"), Clear()},
		{"empty string is a value", `{"access_token":""}`, Value(""), Keep()},
		{"empty object", `{}`, Keep(), Keep()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var creds Credentials
			require.NoError(t, json.Unmarshal([]byte(tt.input), &creds))
			assert.Equal(t, tt.wantAccess, creds.AccessToken)
			assert.Equal(t, tt.wantRefresh, creds.RefreshToken)
		})
	}
}

func TestToken_UnmarshalJSONRejectsNonString(t *testing.T) {
	var creds Credentials
	assert.Error(t, json.Unmarshal([]byte(`{"access_token":42}`), &creds))
}

func TestToken_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(Credentials{AccessToken: Value("a"), RefreshToken: Clear()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"a","refresh_token":null}`, string(out))
}

func TestTokenFromPointer(t *testing.T) {
	s := "x"
	assert.Equal(t, Value("x"), tokenFromPointer(&s))
	assert.Equal(t, Clear(), tokenFromPointer(nil))
}
