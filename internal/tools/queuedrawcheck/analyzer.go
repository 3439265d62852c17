// Package queuedrawcheck reports tview queue calls made from inside another
// queued callback. Queued callbacks run on the event loop, and queueing from
// there blocks once the update channel is full.
package queuedrawcheck

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports nested QueueUpdateDraw and QueueUpdate calls.
var Analyzer = &analysis.Analyzer{
	Name: "queuedrawcheck",
	Doc:  "reports QueueUpdateDraw/QueueUpdate calls inside queued callbacks",
	Run:  run,
}

// queueFuncs is the comma-separated list of method names treated as queue
// calls. Wrappers that forward to QueueUpdateDraw can be added with -funcs.
var queueFuncs = "QueueUpdateDraw,QueueUpdate"

func init() {
	Analyzer.Flags.StringVar(&queueFuncs, "funcs", queueFuncs, "comma-separated queue method names")
}

func run(pass *analysis.Pass) (interface{}, error) {
	names := queueNames(queueFuncs)

	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			outerCall, ok := n.(*ast.CallExpr)
			if !ok || len(outerCall.Args) == 0 {
				return true
			}
			outer, ok := queueCallName(outerCall, names)
			if !ok {
				return true
			}

			fnLit, ok := outerCall.Args[0].(*ast.FuncLit)
			if !ok {
				return true
			}

			ast.Inspect(fnLit.Body, func(inner ast.Node) bool {
				// Function literals inside the callback (goroutines, handlers)
				// run elsewhere and are checked at their own call sites.
				if _, ok := inner.(*ast.FuncLit); ok {
					return false
				}

				innerCall, ok := inner.(*ast.CallExpr)
				if !ok {
					return true
				}
				if name, ok := queueCallName(innerCall, names); ok {
					pass.Reportf(innerCall.Pos(), "nested %s inside %s callback can deadlock tview", name, outer)
					return false
				}
				return true
			})

			return true
		})
	}

	return nil, nil
}

func queueNames(list string) map[string]bool {
	names := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names[name] = true
		}
	}
	return names
}

func queueCallName(call *ast.CallExpr, names map[string]bool) (string, bool) {
	selector, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || selector.Sel == nil {
		return "", false
	}
	return selector.Sel.Name, names[selector.Sel.Name]
}
