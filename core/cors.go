package core

import "strings"

const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderContentType  = "Content-Type"
	ContentTypeJSON    = "application/json"
)

// Headers returns the CORS response headers, falling back to the defaults
// for any empty setting.
func (c CORSConfig) Headers() map[string]string {
	return map[string]string{
		HeaderAllowOrigin:  firstNonEmpty(c.AllowedOrigin, DefaultAllowedOrigin),
		HeaderAllowHeaders: firstNonEmpty(c.AllowedHeaders, DefaultAllowedHeaders),
		HeaderAllowMethods: firstNonEmpty(c.AllowedMethods, DefaultAllowedMethods),
	}
}

// JSONHeaders is Headers plus the JSON content type.
func (c CORSConfig) JSONHeaders() map[string]string {
	headers := c.Headers()
	headers[HeaderContentType] = ContentTypeJSON
	return headers
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
