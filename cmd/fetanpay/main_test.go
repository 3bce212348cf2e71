package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeListener struct {
	err  error
	addr string
}

func (f *fakeListener) Listen(addr string) error {
	f.addr = addr
	return f.err
}

func TestServeReturnsZeroAfterGracefulShutdown(t *testing.T) {
	l := &fakeListener{}
	assert.Equal(t, 0, serve(l, "localhost:4000"))
	assert.Equal(t, "localhost:4000", l.addr)
}

func TestServeReturnsOneWhenListenFails(t *testing.T) {
	l := &fakeListener{err: errors.New("listen tcp 127.0.0.1:4000: bind: address already in use")}
	assert.Equal(t, 1, serve(l, "127.0.0.1:4000"))
}
