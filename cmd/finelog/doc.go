// Package main hosts the finelog CLI entrypoint and command graph.
//
// The Cobra-based command tree validates router configurations, scaffolds
// sample config files, prunes aged durable destinations, and drives
// end-to-end demonstration emissions through the verbosity gate, resolver,
// and router. Configuration resolution and logger construction live here so
// the library packages stay free of process concerns.
package main
