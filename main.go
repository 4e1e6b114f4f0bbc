package main

import "github.com/Mohsinsiddi/w3faucet/cmd"

func main() {
	cmd.Execute()
}
