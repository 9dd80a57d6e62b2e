package main

import "hrmgo/internal/cli"

func main() {
	cli.Execute()
}
