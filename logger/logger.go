// Package logger provides adapters for popular logger libraries to work with avltriee's Logger interface.
//
// The adapters allow you to use your existing logger with avltriee without writing boilerplate.
// Note that the standard library's slog.Logger already implements avltriee.Logger directly.
//
// Example with zap:
//
//	import (
//	    "github.com/alexhholmes/avltriee"
//	    "github.com/alexhholmes/avltriee/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    alloc, err := avltriee.OpenMmapAllocator[int64]("index.arena",
//	        avltriee.WithLogger(logger.NewZap(zapLogger)))
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer alloc.Close()
//	}
package logger
