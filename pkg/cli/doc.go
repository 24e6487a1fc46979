// Package cli implements the httpreplay command-line interface.
//
// Commands:
//
//	do <METHOD> <URL>          run one request through the replay engine
//	fingerprint <METHOD> <URL> print a request's fingerprint and cassette path
//	cassettes list|show|prune  inspect and clean recorded documents
//	stubs validate [glob...]   load stub fixtures and report registration errors
//	config                     print the effective configuration and its sources
//	version                    print build information
//
// Configuration is layered by pkg/cliconfig; flags given on the command line
// take precedence over every other source.
package cli
