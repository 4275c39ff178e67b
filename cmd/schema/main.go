// Command schema regenerates the JSON schema embedded in pkg/config.
// Run it after changing the Config struct and commit the result, the
// config loader verifies files against the embedded copy on startup.
package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/umputun/devpulse/pkg/config"
)

func main() {
	out := "schema.json"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	reflected := jsonschema.Reflect(&config.Config{})
	data, err := json.MarshalIndent(reflected, "", "  ")
	if err != nil {
		log.Fatalf("can't marshal config schema: %v", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(out, data, 0o600); err != nil { //nolint:gosec // generated schema, nothing sensitive
		log.Fatalf("can't write %s: %v", out, err)
	}
	log.Printf("schema written to %s", out)
}
