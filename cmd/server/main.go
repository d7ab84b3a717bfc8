package main

import (
	"fmt"
	"os"

	"github.com/example/contentapi/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		application.Log.Fatal("server stopped", "error", err)
	}
}
