package main

import (
	"context"
	"os"

	"yatube/service"
)

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the command line and exits with its status.
func RealMain() {
	exit(service.Execute(context.Background(), os.Args[1:]))
}
