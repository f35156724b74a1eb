// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
)

// Forward is the proxy header that carries the address of the originating
// client when the server sits behind a reverse proxy.
const Forward = "X-Forwarded-For"

// ParseGetParams parses the query params from the GET request into a struct.
// This method requires the struct type to be defined with `schema` tags.
func ParseGetParams(r *http.Request, dst interface{}) error {
	err := r.ParseForm()
	if err != nil {
		return err
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder.Decode(dst, r.Form)
}

// RemoteAddr returns a string of the remote address, i.e. the address that
// sent the request.
func RemoteAddr(r *http.Request) string {
	via := r.RemoteAddr
	xff := r.Header.Get(Forward)
	if xff != "" {
		return fmt.Sprintf("%v via %v", xff, r.RemoteAddr)
	}
	return via
}

// ClientIP returns the bare IP address of the originating client, preferring
// the first entry of the proxy forward header when one is present. The result
// is suitable as a rate limiting key.
func ClientIP(r *http.Request) string {
	xff := r.Header.Get(Forward)
	if xff != "" {
		// The header may contain a comma separated list of addresses
		// when the request traversed multiple proxies. The first
		// entry is the originating client.
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
