package util

import (
	"io"

	"github.com/hashicorp/go-multierror"
)

// CombineErrors merges the non-nil errors. A single error is returned as-is.
func CombineErrors(errors ...error) (err error) {
	for _, e := range errors {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}

// WriteClose runs write and then closes c, reporting failures from both.
func WriteClose(c io.Closer, write func() error) (err error) {
	defer func() {
		e := c.Close()
		err = CombineErrors(err, e)
	}()
	return write()
}
