// Command distctl plans contact sheet distributions from the command line.
package main

import "github.com/JonMunkholm/leaddist/internal/cli"

func main() {
	cli.Execute()
}
