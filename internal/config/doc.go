// Package config loads hermes.json.
//
// Values are layered: built-in defaults, then the JSON file, then
// environment variables prefixed with HERMES_. Nested keys use a double
// underscore, so HERMES_METRICS__ENABLED=true sets metrics.enabled.
//
// # Configuration File Structure
//
//	{
//	  "host": "localhost",
//	  "port": 3000,
//	  "max_notifications": 5,
//	  "list_classes": ["toasts"],
//	  "styles": {
//	    "success": {
//	      "shared": ["toast", "toast-success"],
//	      "in": ["toast-in"],
//	      "paused": ["toast-paused"],
//	      "out": ["toast-out"],
//	      "pause_time": 3000
//	    }
//	  },
//	  "metrics": {"enabled": true, "namespace": "hermes"},
//	  "tracing": {"enabled": false, "tracer_name": "hermes"}
//	}
//
// A "styles" object in the file replaces the default styles rather than
// merging with them.
//
// # Usage
//
//	cfg, err := config.Load("hermes.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
