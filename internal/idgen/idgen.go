// Package idgen produces the human-readable business identifiers used as
// natural keys: order numbers, event numbers and delivery tracking numbers.
// All three are advisory-unique; the persistence layer enforces uniqueness.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// OrderNumber returns "ORD-<millis>-<8 random uppercase alphanumerics>".
func OrderNumber() string {
	suffix := make([]byte, 8)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderSuffixAlphabet))))
		if err != nil {
			n = big.NewInt(time.Now().UnixNano() % int64(len(orderSuffixAlphabet)))
		}
		suffix[i] = orderSuffixAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

// TrackingNumber returns "TRK-<yyyyMMdd>-<6 digit random>".
func TrackingNumber() string {
	datePart := time.Now().Format("20060102")
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 900000)
	}
	return fmt.Sprintf("TRK-%s-%d", datePart, n.Int64()+100000)
}

// Sequencer hands out the next value of a named daily counter. The counter
// must be atomic across concurrent callers.
type Sequencer interface {
	Next(name string) (int64, error)
}

// EventNumber returns "EVT-<yyyyMMdd>-<zero padded sequence>". The sequence
// comes from the Sequencer rather than a table-count snapshot, so two events
// created at the same instant cannot share a number.
func EventNumber(seq Sequencer) (string, error) {
	datePart := time.Now().Format("20060102")
	n, err := seq.Next("event_seq:" + datePart)
	if err != nil {
		return "", fmt.Errorf("event sequence: %w", err)
	}
	return fmt.Sprintf("EVT-%s-%04d", datePart, n), nil
}
