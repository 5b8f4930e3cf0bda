// Package config loads relayd's two configuration layers: StaticConfig
// (environment variables, read once at process start) and
// DynamicConfig (the routing table and TLS file paths, read from a
// TOML file and reloadable on SIGHUP).
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/caddyserver/relayd/internal/wildcard"
)

const (
	defaultConfigFile = "config.toml"
	defaultHTTPPort   = 8080
	defaultHTTPSPort  = 8443
)

// Static holds the process-lifetime configuration sourced from
// environment variables. It is immutable after LoadStatic returns.
type Static struct {
	ConfigFilePath string
	HTTPPort       uint16
	HTTPSPort      uint16
}

// LoadStatic reads CONFIG_FILE, HTTP_PORT, and HTTPS_PORT from the
// environment, applying the documented defaults. An invalid port
// value is a startup-aborting error.
func LoadStatic() (Static, error) {
	cfg := Static{
		ConfigFilePath: defaultConfigFile,
		HTTPPort:       defaultHTTPPort,
		HTTPSPort:      defaultHTTPSPort,
	}

	if v, ok := os.LookupEnv("CONFIG_FILE"); ok {
		cfg.ConfigFilePath = v
	}

	if v, ok := os.LookupEnv("HTTP_PORT"); ok {
		port, err := parsePort(v)
		if err != nil {
			return Static{}, fmt.Errorf("HTTP_PORT must be a valid port: %w", err)
		}
		cfg.HTTPPort = port
	}

	if v, ok := os.LookupEnv("HTTPS_PORT"); ok {
		port, err := parsePort(v)
		if err != nil {
			return Static{}, fmt.Errorf("HTTPS_PORT must be a valid port: %w", err)
		}
		cfg.HTTPSPort = port
	}

	return cfg, nil
}

func parsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// Route pairs a compiled host pattern with the backend address it
// forwards to. Precedence among routes is positional: the order in
// Dynamic.Routes is the order routes were declared in the config file,
// and the classifier always takes the first match.
type Route struct {
	HostPattern    wildcard.Pattern
	BackendAddress *net.TCPAddr
}

// Dynamic is the live, reloadable half of relayd's configuration.
type Dynamic struct {
	CertFilePath string
	KeyFilePath  string
	Routes       []Route
}

// fileShape mirrors the TOML document shape from spec.md §6, decoded
// before validation and compilation turn it into a Dynamic.
type fileShape struct {
	CertFile string        `toml:"cert_file"`
	KeyFile  string        `toml:"key_file"`
	Routes   []routeShape  `toml:"routes"`
}

type routeShape struct {
	Host    string `toml:"host"`
	Address string `toml:"address"`
}

// LoadDynamic reads and parses the TOML file at path, compiling each
// route's host pattern and resolving its backend address. Any parse or
// validation failure aborts the entire load — no partial routing table
// is ever returned.
func LoadDynamic(path string) (Dynamic, error) {
	var shape fileShape
	if _, err := toml.DecodeFile(path, &shape); err != nil {
		return Dynamic{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	routes := make([]Route, 0, len(shape.Routes))
	for i, rs := range shape.Routes {
		pattern, err := wildcard.Compile(rs.Host)
		if err != nil {
			return Dynamic{}, fmt.Errorf("route %d: invalid host pattern %q: %w", i, rs.Host, err)
		}

		addr, err := net.ResolveTCPAddr("tcp", rs.Address)
		if err != nil {
			return Dynamic{}, fmt.Errorf("route %d: failed to parse address %q: %w", i, rs.Address, err)
		}

		routes = append(routes, Route{HostPattern: pattern, BackendAddress: addr})
	}

	return Dynamic{
		CertFilePath: shape.CertFile,
		KeyFilePath:  shape.KeyFile,
		Routes:       routes,
	}, nil
}

// Match returns the first route whose pattern matches host, in
// declaration order, and whether one was found.
func (d Dynamic) Match(host string) (Route, bool) {
	for _, r := range d.Routes {
		if r.HostPattern.Match(host) {
			return r, true
		}
	}
	return Route{}, false
}
