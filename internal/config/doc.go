// Package config loads the configuration of hassctl.
//
// Configuration is read from a YAML file and can be overridden by
// environment variables:
//
//	hass:
//	  url: "http://hass.local:8123"   # HASS_URL
//	  api_password: ""                # HASS_API_PASSWORD
//	  timeout: 5s                     # HASS_TIMEOUT
//	  interface: ""                   # HASS_INTERFACE (linux only)
//	resolve:
//	  network: "ip4"
//	  dns_server: "192.168.1.1:53"
//	  static_hosts:
//	    hass.local: "192.168.1.10"
//	discovery:
//	  enabled: false
//	  timeout: 5s
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//	sensors:
//	  - entity_id: "sensor.cpu_temperature"
//	    file: "/sys/class/thermal/thermal_zone0/temp"
//	    scale: 0.001
//	    unit: "°C"
//	    report_delta: 0.5
//	poll_interval: 30s
//
// Never commit a config file carrying the api password.
package config
