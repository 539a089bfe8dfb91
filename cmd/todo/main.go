// Command todo is the terminal client for the go-todo API.
package main

import (
	"os"
)

func main() {
	a := newApp(os.Stdout)
	if err := a.rootCmd().Execute(); err != nil {
		a.report(err)
		os.Exit(1)
	}
}
