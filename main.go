package main

import "xqbook/navigator/cmd"

func main() {
	cmd.Execute()
}
