package cli

import (
	"encoding/json"
	"fmt"
)

// outputJSON prints v as indented JSON to stdout, the --json counterpart
// to the plain-text renderers in query.go/version.go.
func (c *CLI) outputJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cli: marshal JSON output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
