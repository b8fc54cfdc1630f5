package main

import "github.com/khanhnv2901/assetwatch/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
