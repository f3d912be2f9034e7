package main

import "github.com/mealmax/mealprobe/internal/cli"

func main() {
	cli.Execute()
}
