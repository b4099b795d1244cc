// Package main is the entry point for the profbisect CLI.
package main

import "profbisect.dev/pkg/profbisect/cmd"

func main() {
	cmd.Execute()
}
