//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Environment variable checking.
//
package core

import (
	"os"
)

// EnvRequire verifies that each of the named environment variables is set,
// and returns their values in a map. If any are missing, it prints the full
// list of requirements with example values and exits. Values are logged
// unless log is false, so secrets can be kept out of the log file.
func EnvRequire(reqs [][]string, log bool) map[string]string {
	e := map[string]string{}
	for _, req := range reqs {
		val := os.Getenv(req[0])
		if len(val) == 0 {
			Println("Please set the following environment variables:")
			for _, req := range reqs {
				if len(os.Getenv(req[0])) == 0 {
					Println("export %s=%s", req[0], req[1])
				}
			}
			os.Exit(1)
		}
		e[req[0]] = val
		if log {
			LogInfo("environ", "%s=%s", req[0], val)
		}
	}
	return e
}
