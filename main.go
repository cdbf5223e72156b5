package main

import "github.com/tantalor93/dnsrtt/cmd"

func main() {
	cmd.Execute()
}
