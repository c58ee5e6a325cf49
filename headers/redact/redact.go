// headers/redact/redact.go
package redact

import "strings"

// RedactedValue replaces sensitive values in logs.
const RedactedValue = "REDACTED"

// sensitiveKeys are matched case-insensitively against header, cookie and log field names.
var sensitiveKeys = map[string]bool{
	"accesstoken":            true,
	"access_token":           true,
	"refreshtoken":           true,
	"refresh_token":          true,
	"rollback_access_token":  true,
	"rollback_refresh_token": true,
	"authorization":          true,
	"password":               true,
	"cookie":                 true,
	"set-cookie":             true,
}

// IsSensitiveKey reports whether values stored under key must not be logged.
func IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData && IsSensitiveKey(key) {
		return RedactedValue
	}
	return value
}
