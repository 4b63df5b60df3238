/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/cedarkv/bptree/cmd/bptreectl/cmd"

func main() {
	cmd.Execute()
}
