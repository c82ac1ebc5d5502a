// Command legalnlp drives the contract-semantics extraction engine: tokenize
// a document, run it through a resolver pipeline, and render or serve the
// resulting Component H snapshot.
package main

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

var cfg = defaultConfig()

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads path as YAML into cfg, leaving defaults in place for any
// field the file omits. A missing file is not an error: legalnlp runs fine
// with no config.yaml at all.
func loadConfig(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, &cfg)
}
