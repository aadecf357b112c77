package lox_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"prodi/pkg/lox"
)

func TestMap(t *testing.T) {
	rq := require.New(t)

	rq.Equal([]string{"1", "2"}, lox.Map([]int{1, 2}, strconv.Itoa))
	rq.Equal([]string{}, lox.Map([]int(nil), strconv.Itoa))
}

func TestMapErr(t *testing.T) {
	rq := require.New(t)

	got, err := lox.MapErr([]string{"1", "2"}, strconv.Atoi)
	rq.NoError(err)
	rq.Equal([]int{1, 2}, got)

	_, err = lox.MapErr([]string{"1", "x"}, strconv.Atoi)

	var numErr *strconv.NumError
	rq.True(errors.As(err, &numErr))
}
