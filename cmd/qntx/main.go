package main

import (
	"context"
	"fmt"
	"os"

	"github.com/teranos/qntx-core/cmd/qntx/commands"
	"github.com/teranos/qntx-core/errors"
)

func main() {
	if err := commands.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
