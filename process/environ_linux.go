//go:build linux

package process

import (
	"os"
	"strings"
)

// Environ returns the process's environment as a map from variable name to
// value, parsed from /proc/<pid>/environ. The first "=" in each NAME=VALUE
// entry splits the name from the value, so a value containing "=" is
// preserved intact (spec §4.6).
//
// The original source this module's behavior was distilled from builds
// this map inside a lazily-evaluated iterator that is then discarded
// without ever being forced, so process_environ there always returns
// empty. Spec §9 open question (a) resolves this as unintended; Environ
// always returns the fully populated map.
func (p *Process) Environ() map[string]string {
	data, err := os.ReadFile(p.procPath("environ"))
	if err != nil {
		return map[string]string{}
	}
	result := map[string]string{}
	for _, entry := range strings.Split(string(data), "\x00") {
		if entry == "" {
			continue
		}
		idx := strings.Index(entry, "=")
		if idx < 0 {
			result[entry] = ""
			continue
		}
		result[entry[:idx]] = entry[idx+1:]
	}
	return result
}
