// fast-telemetry serves the user path telemetry API
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/searchktools/fast-telemetry/app"
)

func main() {
	if err := app.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
