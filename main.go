package main

import (
	"github.com/squirreldb/squirreldb-go/cmd"
)

func main() {
	cmd.Execute()
}
