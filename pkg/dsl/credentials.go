// Package dsl exposes typed connection handlers over slices of the merged
// configuration. Each handler validates its required fields at construction
// and derives ready-to-use connection strings and endpoint URLs; a handler
// never reaches a usable-but-broken state.
package dsl

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ConstructionError reports a required handler field that is empty or zero
// at construction time. It is fatal to the load that triggered it.
type ConstructionError struct {
	Handler string
	Field   string
	Reason  string
}

func (e *ConstructionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s handler: field %q: %s", e.Handler, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s handler: required field %q is empty", e.Handler, e.Field)
}

// BasicCredentials is the credential pair exposed by dashboard handlers.
// Username may be empty for services that authenticate by password alone.
type BasicCredentials struct {
	Username string
	Password string
}

const upperhex = "0123456789ABCDEF"

// EncodeCredential percent-encodes a credential for embedding in the
// userinfo portion of a connection string. Characters such as '@', '#', ':'
// and '/' are structurally significant there and must not appear raw.
// Every byte outside the RFC 3986 unreserved set is escaped, so a space
// renders as "%20", never "+"; URL-parsing consumers percent-decode the
// result back to the original.
//
// DecodeCredential(EncodeCredential(c)) == c holds for every string c,
// including unicode; consumers decode before handing the credential to the
// backing service's native protocol.
func EncodeCredential(credential string) string {
	var b strings.Builder
	b.Grow(len(credential))
	for i := 0; i < len(credential); i++ {
		c := credential[i]
		if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

// DecodeCredential reverses EncodeCredential. Plain percent-decoding: '+'
// stays a literal plus.
func DecodeCredential(encoded string) (string, error) {
	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return "", fmt.Errorf("decode credential: %w", err)
	}
	return decoded, nil
}

// authority renders host:port for use in a URL, bracketing bare IPv6
// literals per URL authority syntax.
func authority(host string, port int) string {
	p := strconv.Itoa(port)
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host + ":" + p
	}
	return net.JoinHostPort(host, p)
}

// hasPort reports whether addr already embeds a port.
func hasPort(addr string) bool {
	_, _, err := net.SplitHostPort(addr)
	return err == nil
}

func requireString(handler, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ConstructionError{Handler: handler, Field: field}
	}
	return nil
}

func requirePort(handler, field string, value int) error {
	if value < 1 || value > 65535 {
		return &ConstructionError{Handler: handler, Field: field}
	}
	return nil
}
