package main

import (
	"fmt"
	"os"

	"hrmgo/internal/app/server"
)

func main() {
	if err := server.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "hrmgo:", err)
		os.Exit(1)
	}
}
