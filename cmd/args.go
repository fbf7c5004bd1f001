package main

import (
	"fmt"

	"mav-playback/utils"
)

const defaultPrefix = "test"

type sequenceArg struct {
	Folder     string
	Timestamps string
}

// runArgs are the positional arguments:
//
//	vocabulary settings folder timestamps [folder timestamps ...] [prefix]
//
// An odd count after the two leading paths means the last one is the
// output prefix.
type runArgs struct {
	Vocabulary string
	Settings   string
	Sequences  []sequenceArg
	Prefix     string
}

func parseArgs(args []string) (*runArgs, error) {
	if len(args) < 4 {
		return nil, utils.ConfigurationError("", fmt.Errorf("expected at least 4 arguments, got %d", len(args)))
	}
	ra := &runArgs{
		Vocabulary: args[0],
		Settings:   args[1],
		Prefix:     defaultPrefix,
	}
	rest := args[2:]
	if len(rest)%2 == 1 {
		ra.Prefix = rest[len(rest)-1]
		rest = rest[:len(rest)-1]
	}
	if ra.Prefix == "" {
		return nil, utils.ConfigurationError("", fmt.Errorf("empty output prefix"))
	}
	for i := 0; i < len(rest); i += 2 {
		ra.Sequences = append(ra.Sequences, sequenceArg{Folder: rest[i], Timestamps: rest[i+1]})
	}
	return ra, nil
}
