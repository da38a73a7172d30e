/*
Package fasttelemetry is a small HTTP/1.1 server that records user interaction
timings per event and answers mean path length queries over time ranges.

The server stack is built from scratch: a push-based request scanner and
validating parser, a path router with {param} templates, and a keep-alive
session runtime that runs request processing on a fixed worker pool.

HTTP API

	POST /paths/{event}
	    {"date": 10, "values": [1, 1, 1, 1, 1, 1, 1, 1, 1, 1]}
	    200 with an empty JSON object, 400 {"error": "..."}

	GET /paths/{event}/meanLength
	    {"resultUnit": "seconds", "startTimestamp": 0, "endTimestamp": 20}
	    200 {"mean": 10}, 400 {"error": "..."}

Every request must arrive in a single read of at most 2048 bytes. Requests
other than GET need Content-Type: application/json and an exact
Content-Length. A session stays open only while requests carry
Connection: Keep-Alive and the peer sends within the keep-alive window.

Quick Start

	fast-telemetry --config config.yaml

	# config.yaml
	server:
	  address: 0.0.0.0
	  port: 8080
	  threads: 0            # NumCPU-2, at least 2
	  keep_alive_seconds: 5
	log:
	  level: info
	  format: text
	metrics:
	  address: 127.0.0.1:9100

FT_* environment variables override the file; "fast-telemetry env" lists them.

Modules

  - app: process wiring, signals and the cobra command tree
  - config: cleanenv backed configuration and validation
  - logging: hclog construction
  - core: session runtime, service factory, metrics
  - core/http: request model, scanner, parser, response serializer
  - core/router: literal and {param} routing
  - core/pools: worker pool and read buffers
  - telemetry: interaction store and mean path length
  - telemetry/api: HTTP handlers and payloads
*/
package fasttelemetry
