package logger

import (
	"fmt"
	"log"
	"os"
)

// New returns a stdlib logger that prefixes every line with "[component] ".
func New(component string) *log.Logger {
	prefix := fmt.Sprintf("[%s] ", component)
	return log.New(os.Stdout, prefix, log.LstdFlags|log.Lmsgprefix)
}
