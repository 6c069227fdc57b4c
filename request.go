package coinbasepro

import (
	"net/url"
	"strings"
)

// Param is a single query parameter. Slices of Param keep their insertion
// order all the way into the assembled URL, so a given endpoint and argument
// list always produces byte-identical request URLs.
type Param struct {
	Key   string
	Value string
}

// encodeQuery serializes params in order with standard percent-escaping.
// url.Values is deliberately not used here: its Encode sorts keys.
func encodeQuery(params []Param) string {
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// buildURL joins the configured base URL with an endpoint path and optional
// query parameters, then validates the result. The base is used exactly as
// configured; no trailing-slash normalization is applied.
func buildURL(base, endpoint string, params []Param) (string, error) {
	raw := base + endpoint
	if len(params) > 0 {
		raw += "?" + encodeQuery(params)
	}
	if _, err := url.Parse(raw); err != nil {
		return "", err
	}
	return raw, nil
}
