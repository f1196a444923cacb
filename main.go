package main

import (
	"github.com/2samgu2/heartbeat-android/cmd"
	"github.com/2samgu2/heartbeat-android/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
