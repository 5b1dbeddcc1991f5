package main

import "dsadmin/cmd"

func main() {
	cmd.Execute()
}
