// Command insightview is the terminal viewer for code search results.
package main

import "github.com/devnullvoid/insightview/internal/cli"

func main() {
	cli.Execute()
}
