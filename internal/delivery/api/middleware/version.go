package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// Version is an API version selected through the Accept header's "v" media
// type parameter, e.g. "Accept: application/json;v=2".
type Version string

const (
	V1 Version = "1"
	V2 Version = "2"
)

const versionParam = "v"

// RequestedVersion returns the first version parameter found among the
// Accept header's media ranges. There is no default version.
func RequestedVersion(r *http.Request) (Version, bool) {
	for _, accept := range r.Header.Values("Accept") {
		for _, mediaRange := range strings.Split(accept, ",") {
			_, params, err := mime.ParseMediaType(strings.TrimSpace(mediaRange))
			if err != nil {
				continue
			}
			if v := strings.TrimSpace(params[versionParam]); v != "" {
				return Version(v), true
			}
		}
	}

	return "", false
}
