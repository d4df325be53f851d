// Command safebitectl runs the matching engine offline: normalize names,
// check evidence against a list of allergens, reconcile label text, browse
// the alias table and mint development tokens.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
