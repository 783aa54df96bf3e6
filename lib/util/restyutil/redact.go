package restyutil

import (
	"errors"
	"net/url"
)

// query parameters that never make it into a dump, a log or a span
var redactedParams = []string{"api_key"}

const redacted = "REDACTED"

// RedactUrl replaces the values of secret query parameters, urls that fail to parse
// are returned as is.
func RedactUrl(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	changed := false
	for _, param := range redactedParams {
		if query.Has(param) {
			query.Set(param, redacted)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// RedactError returns the *url.Error in err's chain with its url redacted, net/http
// puts the full request url in every transport error. Other errors are returned as is.
func RedactError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{
		Op:  urlErr.Op,
		URL: RedactUrl(urlErr.URL),
		Err: urlErr.Err,
	}
}
