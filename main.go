package main

import "github.com/jsphweid/choirscore/cmd"

func main() {
	cmd.Execute()
}
