package main

import (
	"github.com/winmirror/winmirror/cmd"

	_ "github.com/winmirror/winmirror/internal/platform/windows"
)

func main() {
	cmd.Execute()
}
