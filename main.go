package main

import "github.com/ecclabs/wcost/cmd"

func main() {
	cmd.Execute()
}
