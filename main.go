package main

import "aptdash/internal/aptdash"

func main() {
	aptdash.Main()
}
