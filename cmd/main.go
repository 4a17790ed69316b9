package main

import "github.com/danilofalcao/torchserve-gateway/internal/cmd"

func main() {
	cmd.Run()
}
