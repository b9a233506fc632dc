package main

import "bus-booking/cmd"

func main() {
	cmd.Execute()
}
