package main

import "github.com/bert82503/regioncache/cmd/regionctl/cmd"

func main() {
	cmd.Execute()
}
