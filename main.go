package main

import "github.com/redactyl/licensebanner/cmd/licensebanner"

func main() { licensebanner.Execute() }
