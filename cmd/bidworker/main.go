package main

import "github.com/auctionlab/bidworker/internal/cli"

func main() {
	cli.Execute()
}
