/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "chartbot/cmd"

func main() {
	cmd.Execute()
}
