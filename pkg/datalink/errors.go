package datalink

import (
	"fmt"

	"github.com/arqlink/linkstack/internal/linkerr"
)

func errInvalidf(format string, a ...interface{}) error {
	return linkerr.New(linkerr.ParameterInvalid, "datalink", fmt.Errorf(format, a...))
}

func errNoMemory(op string) error {
	return linkerr.New(linkerr.NotEnoughMemory, op, nil)
}
