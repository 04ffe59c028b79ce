/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package comm builds gRPC connections to peers, orderers and event sources.
package comm

import (
	"crypto/tls"
	"crypto/x509"
	"regexp"
	"strings"
	"time"

	"github.com/cloudflare/cfssl/helpers"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"google.golang.org/grpc/keepalive"
)

var securedURL = regexp.MustCompile(`(?i)^[a-z]+s://`)

// EndpointConfig holds the connection settings of one node
type EndpointConfig struct {
	URL                string
	TLSCACerts         []*x509.Certificate
	ServerHostOverride string
	KeepAlive          keepalive.ClientParameters
	FailFast           bool
	AllowInsecure      bool
	DialTimeout        time.Duration
	// RetryMax is the number of retries of unary calls that fail with Unavailable
	RetryMax uint
}

// FromGRPCOptions builds an EndpointConfig from the free form grpcOptions of
// a node configuration (ssl-target-name-override, keep-alive-time,
// keep-alive-timeout, keep-alive-permit, fail-fast, allow-insecure, retry-max).
func FromGRPCOptions(url string, tlsCACertPEM []byte, grpcOptions map[string]interface{}) (EndpointConfig, error) {
	cfg := EndpointConfig{
		URL:                url,
		ServerHostOverride: cast.ToString(grpcOptions["ssl-target-name-override"]),
		KeepAlive: keepalive.ClientParameters{
			Time:                cast.ToDuration(grpcOptions["keep-alive-time"]),
			Timeout:             cast.ToDuration(grpcOptions["keep-alive-timeout"]),
			PermitWithoutStream: cast.ToBool(grpcOptions["keep-alive-permit"]),
		},
		FailFast:      cast.ToBool(grpcOptions["fail-fast"]),
		AllowInsecure: cast.ToBool(grpcOptions["allow-insecure"]),
		RetryMax:      cast.ToUint(grpcOptions["retry-max"]),
	}

	if len(tlsCACertPEM) > 0 {
		certs, err := helpers.ParseCertificatesPEM(tlsCACertPEM)
		if err != nil {
			return cfg, errors.Wrapf(err, "invalid TLS CA certificate for %s", url)
		}
		cfg.TLSCACerts = certs
	}
	return cfg, nil
}

// ToAddress trims the grpc protocol prefix since it is not needed by the
// dialer. If no protocol is found the url is returned unchanged.
func ToAddress(url string) string {
	if strings.HasPrefix(url, "grpc://") {
		return strings.TrimPrefix(url, "grpc://")
	}
	if strings.HasPrefix(url, "grpcs://") {
		return strings.TrimPrefix(url, "grpcs://")
	}
	return url
}

// AttemptSecured reports whether a TLS connection must be used:
// 'grpcs' urls are secured, 'grpc' urls are not and urls without a
// protocol are secured unless insecure connections are allowed.
func AttemptSecured(url string, allowInsecure bool) bool {
	if securedURL.MatchString(url) {
		return true
	}
	if strings.Contains(url, "://") {
		return false
	}
	return !allowInsecure
}

// TLSConfig returns the client TLS configuration trusting the given roots
func TLSConfig(roots []*x509.Certificate, serverName string) (*tls.Config, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	for _, cert := range roots {
		pool.AddCert(cert)
	}
	return &tls.Config{RootCAs: pool, ServerName: serverName, MinVersion: tls.VersionTLS12}, nil
}
