// Command queuedrawcheck runs the nested queue call analyzer.
package main

import (
	"github.com/devnullvoid/insightview/internal/tools/queuedrawcheck"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(queuedrawcheck.Analyzer)
}
