package main

import "github.com/spacesedan/sentiflow-kv/internal/cli"

func main() {
	cli.Execute()
}
