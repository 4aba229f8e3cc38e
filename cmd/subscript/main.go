package main

import (
	"github.com/Neopallium/sub-script/cmd/subscript/cmd"
	"github.com/Neopallium/sub-script/pkg/di"
)

func main() {
	cmd.SetContainer(di.NewContainer())
	cmd.Execute()
}
