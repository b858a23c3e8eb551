// Command catalogctl queries the catalog gateway from the terminal using the
// same client, sort and filter rules as the storefront service.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
