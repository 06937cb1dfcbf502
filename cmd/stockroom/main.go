package main

import "github.com/jmcleod/stockroom/cmd/stockroom/cmd"

func main() {
	cmd.Execute()
}
