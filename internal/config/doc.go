// Package config loads lumen configuration.
//
// Configuration comes from, in increasing precedence: built-in defaults, a
// YAML file (lumen.yaml in the working directory, or an explicit path) and
// LUMEN_* environment variables. Nested keys use an underscore in the
// environment: frame.interval is LUMEN_FRAME_INTERVAL.
//
// # Configuration File Structure
//
//	tasks:
//	  workers: 4
//	frame:
//	  interval: 16ms
//	  max_frames: 0
//	debug:
//	  enabled: true
//	  addr: localhost:9191
//	  history: 120
//	metrics:
//	  namespace: lumen
//	tracing:
//	  tracer_name: lumen
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
