// httpclient/httpmethod.go
package httpclient

/* Ref: https://www.rfc-editor.org/rfc/rfc7231#section-4.3

+---------+--------------+
| Method  | Body allowed |
+---------+--------------+
| GET     | no           |
| HEAD    | no           |
| OPTIONS | no           |
| DELETE  | yes          |
| PATCH   | yes          |
| POST    | yes          |
| PUT     | yes          |
+---------+--------------+
*/

import (
	"net/http"
	"strings"
)

// AllowsRequestBody reports whether a payload is sent for method.
func AllowsRequestBody(method string) bool {
	methods := map[string]bool{
		http.MethodPost:   true,
		http.MethodPut:    true,
		http.MethodPatch:  true,
		http.MethodDelete: true,
	}

	return methods[strings.ToUpper(method)]
}
