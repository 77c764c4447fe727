package main

import (
	"log"

	"github.com/kilianp07/qsched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("qsched: %v", err)
	}
}
