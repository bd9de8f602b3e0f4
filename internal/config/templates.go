package config

import (
	"fmt"
	"os"
)

// WriteTemplate drops a starter configuration at path. An existing file
// is only replaced when overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const template = `[logging]
level = "info"
format = "json"

[gateway]
listen_addr = ":8420"
api_token = ""
cors_origins = ["http://localhost:3000"]
history_limit = 256
# tls_cert_file = "gateway.crt"
# tls_key_file = "gateway.key"

[[targets]]
name = "vanilla"
host = "localhost"
port = 25575
password = "change-me"
network = "tcp"
exec_timeout = "10s"

[[targets]]
name = "quake"
host = "localhost"
port = 27960
password = "change-me"
network = "udp"
disable_challenge = false
`
