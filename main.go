package main

import "github.com/xbocquet/twcatele/cmd"

func main() {
	cmd.Execute()
}
