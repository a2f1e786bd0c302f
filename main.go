package main

import "github.com/stockx-tools/stockroom/cmd"

func main() {
	cmd.Execute()
}
