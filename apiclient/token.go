// apiclient/token.go
package apiclient

import (
	"bytes"
	"encoding/json"
)

// Token is a tri-state credential update. The zero value keeps the current token,
// Clear removes it and Value replaces it.
type Token struct {
	set   bool
	null  bool
	value string
}

// Keep leaves the current token untouched.
func Keep() Token { return Token{} }

// Clear removes the token from memory and cookie storage.
func Clear() Token { return Token{set: true, null: true} }

// Value stores s as the token.
func Value(s string) Token { return Token{set: true, value: s} }

// IsKeep reports whether the token leaves the current value untouched.
func (t Token) IsKeep() bool { return !t.set }

// IsClear reports whether the token removes the current value.
func (t Token) IsClear() bool { return t.set && t.null }

// Get returns the token value and whether one is set.
func (t Token) Get() (string, bool) {
	if t.set && !t.null {
		return t.value, true
	}
	return "", false
}

// UnmarshalJSON maps JSON null to Clear and a string to Value. An absent key never reaches
// UnmarshalJSON, so it stays Keep.
func (t *Token) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Clear()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = Value(s)
	return nil
}

// MarshalJSON writes Value as a string and both Keep and Clear as null.
func (t Token) MarshalJSON() ([]byte, error) {
	if s, ok := t.Get(); ok {
		return json.Marshal(s)
	}
	return []byte("null"), nil
}

func (t Token) String() string {
	switch {
	case t.IsKeep():
		return "<keep>"
	case t.IsClear():
		return "<clear>"
	}
	return "<value>"
}

func tokenFromPointer(p *string) Token {
	if p == nil {
		return Clear()
	}
	return Value(*p)
}
