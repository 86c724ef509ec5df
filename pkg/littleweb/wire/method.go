package wire

// IsValidMethod reports whether token is a well-formed HTTP method: an
// uppercase sequence with no spaces. The wire codec rejects anything else
// as KindBadRequest.
func IsValidMethod(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// methodsCustomarilyBodyless are methods for which an absent Content-Length
// and absent Transfer-Encoding is simply "no body" rather than an error.
var methodsCustomarilyBodyless = map[string]bool{
	MethodGET:     true,
	MethodHEAD:    true,
	MethodDELETE:  true,
	MethodOPTIONS: true,
	MethodTRACE:   true,
}

// IsCustomarilyBodyless reports whether method conventionally carries no
// request body.
func IsCustomarilyBodyless(method string) bool {
	return methodsCustomarilyBodyless[method]
}
