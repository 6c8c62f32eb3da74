package main

import "github.com/relloyd/country-metrics/cmd"

func main() {
	cmd.Execute()
}
