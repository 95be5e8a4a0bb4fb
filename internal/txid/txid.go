// Package txid issues short, non-sequential transaction ids for payments.
package txid

import (
	"fmt"
	"sync/atomic"
	"time"

	hashids "github.com/speps/go-hashids/v2"
)

const prefix = "TXN"

// Generator produces ids like TXN4QjZkO3WrX. The encoded payload is a
// millisecond timestamp plus a process-local counter, so ids are unique
// across restarts and across concurrent calls without a database round
// trip.
type Generator struct {
	h       *hashids.HashID
	counter atomic.Int64
}

func NewGenerator(salt string) (*Generator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 10
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("init hashids: %w", err)
	}
	return &Generator{h: h}, nil
}

func (g *Generator) Next() (string, error) {
	now := time.Now().UnixMilli()
	seq := g.counter.Add(1) % 1000
	encoded, err := g.h.EncodeInt64([]int64{now, seq})
	if err != nil {
		return "", fmt.Errorf("encode transaction id: %w", err)
	}
	return prefix + encoded, nil
}
