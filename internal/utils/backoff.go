package utils

import (
	"math/rand"
	"time"
)

// Backoff executa fn com retentativas e espera exponencial com jitter.
type Backoff struct {
	base       time.Duration
	maxRetries int
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, maxRetries: maxRetries}
}

func (b Backoff) Do(fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		sleep := time.Duration(1<<i) * b.base
		sleep += time.Duration(rand.Intn(150)) * time.Millisecond
		time.Sleep(sleep)
	}
	return err
}
