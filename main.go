package main

import "github.com/iksnae/readgye-cli/cmd"

func main() {
	cmd.Execute()
}
