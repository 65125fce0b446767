package lib

import (
	"fmt"
	"io"
	"os"
)

// Exit codes shared by the commands in this module.
const (
	ExitFailure  = 1
	ExitSoftware = 70 // internal defect, as in sysexits.h EX_SOFTWARE
)

// Report writes err to w in the "Error: ..." form every command uses.
func Report(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
}

// Exit reports err on stderr and exits the program with code.
func Exit(err error, code int) {
	Report(os.Stderr, err)
	os.Exit(code)
}
