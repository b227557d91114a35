package main

import (
	"os"

	"wifihal/internal/halctl"
)

func main() { os.Exit(halctl.Main()) }
