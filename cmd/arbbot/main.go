package main

import "flasharb/internal/arbbot"

func main() {
	arbbot.Run()
}
