package commands

import (
	"encoding/json"
	"fmt"
	"os"
)

func Print(body interface{}, verbose, rawJSON bool) error {
	switch {
	case verbose:
		// Verbose printing is handled in the client
	case rawJSON:
		// Raw JSON printing is handled in the client
	default:
		// Pretty print the body
		b, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return fmt.Errorf("MarshalIndent: %v", err)
		}
		fmt.Fprintf(os.Stdout, "%s\n", b)
	}

	return nil
}
