package installer

import (
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ActivePipProcesses returns PIDs of other running processes whose executable
// name starts with "pip", e.g. pip, pip3, pip.exe.
//
// The process table only carries executable names, so pip started as
// `python -m pip` (including the children of this tool) shows up as the
// interpreter and is not reported.
func ActivePipProcesses() ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	return matchPipProcesses(processList, os.Getpid()), nil
}

func matchPipProcesses(processList []ps.Process, self int) []int {
	var pids []int

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if isPipExecutable(process.Executable()) {
			pids = append(pids, process.Pid())
		}
	}

	sort.Ints(pids)

	return pids
}

func isPipExecutable(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	if !strings.HasPrefix(name, "pip") {
		return false
	}

	rest := strings.TrimPrefix(name, "pip")

	return strings.Trim(rest, "0123456789.") == ""
}
