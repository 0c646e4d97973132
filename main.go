package main

import "github.com/alaynabinder/DIIG-Data-Challenge/cmd"

func main() {
	cmd.Execute()
}
