package main

import "github.com/hydroviz/twsmap/internal/cmd"

func main() {
	cmd.Execute()
}
