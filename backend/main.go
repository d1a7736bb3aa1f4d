package main

import "github.com/AnTengye/contractgen/backend/cli"

func main() {
	cli.Execute()
}
